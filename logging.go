package pegvm

import "github.com/sirupsen/logrus"

// log is the package-wide logger. Confined to Debug-level diagnostics
// in the compiler and to the recovered-panic path in Match — never on
// the VM's hot per-instruction loop (§2.2 of the expanded spec).
var log = logrus.WithField("component", "pegvm")
