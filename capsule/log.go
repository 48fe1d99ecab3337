package capsule

import "github.com/sirupsen/logrus"

var log = logrus.WithField("prefix", "capsule")
