package logrusconfig

import (
	"flag"
	"fmt"
	"io"
	"strconv"

	prefixed "github.com/BertoldVdb/logrus-prefixed-formatter"
	"github.com/sirupsen/logrus"
)

// LevelFlag is a flag.Value accepting either a level name ("debug") or its
// number ("5")
type LevelFlag struct {
	level logrus.Level
	set   bool
}

// ParseLevel converts a level name or number into a logrus level
func ParseLevel(s string) (logrus.Level, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < int(logrus.PanicLevel) || n > int(logrus.TraceLevel) {
			return 0, fmt.Errorf("loglevel %d out of range %d-%d", n, logrus.PanicLevel, logrus.TraceLevel)
		}
		return logrus.Level(n), nil
	}

	return logrus.ParseLevel(s)
}

func (l *LevelFlag) Set(s string) error {
	level, err := ParseLevel(s)
	if err != nil {
		return err
	}

	l.level = level
	l.set = true
	return nil
}

func (l *LevelFlag) String() string {
	if l == nil || !l.set {
		return ""
	}
	return l.level.String()
}

// Level returns the parsed level, or fallback when the flag was not given
func (l *LevelFlag) Level(fallback logrus.Level) logrus.Level {
	if l == nil || !l.set {
		return fallback
	}
	return l.level
}

var commandLine *LevelFlag

// InitParam registers -loglevel on the default flag set. Call it before flag.Parse.
func InitParam() {
	commandLine = &LevelFlag{}
	flag.Var(commandLine, "loglevel", "Log level by name (error, warn, info, debug, trace) or number 0-6")
}

func newFormatter() logrus.Formatter {
	f := new(prefixed.TextFormatter)
	f.TimestampFormat = "2006-01-02 15:04:05.000"
	f.FullTimestamp = true
	f.PrefixPadding = 12
	f.SpacePadding = 40
	return f
}

// NewLogger builds a prefixed text logger writing to out at level
func NewLogger(out io.Writer, level logrus.Level) *logrus.Entry {
	logrus.ErrorKey = "$error"

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(level)
	logger.SetFormatter(newFormatter())

	return logrus.NewEntry(logger)
}

// GetLogger returns a stderr logger at the -loglevel value if one was given, or at
// level otherwise
func GetLogger(level logrus.Level) *logrus.Entry {
	return NewLogger(logrus.StandardLogger().Out, commandLine.Level(level))
}

// Component tags all entries of parent with a prefix naming the component
func Component(parent *logrus.Entry, name string) *logrus.Entry {
	return parent.WithField("prefix", name)
}
