package core

// Version is the installed plugin version, compared against the remote
// VERSION file by the update checker.
const Version = "1.1.3"
