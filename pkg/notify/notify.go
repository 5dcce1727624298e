package notify

import "github.com/sirupsen/logrus"

// LogNotifier renders controller notifications through the structured
// logger. Headless surfaces (the JSON server, the CLI) use it in place of a
// toast rail.
type LogNotifier struct {
	log *logrus.Entry
}

func NewLogNotifier(logger *logrus.Logger, area string) *LogNotifier {
	return &LogNotifier{log: logger.WithField("area", area)}
}

func (n *LogNotifier) Success(msg string) { n.log.Info(msg) }
func (n *LogNotifier) Error(msg string)   { n.log.Error(msg) }
func (n *LogNotifier) Busy(msg string)    { n.log.Debug(msg) }
func (n *LogNotifier) BusyDone()          {}
