package otf

// warnf reports a non-fatal parse anomaly. It compiles away entirely
// (see log_release.go) unless the otfdebug build tag is set, per §7's
// "optional log warning ... a single-line warn macro that compiles away
// without the logging feature".
