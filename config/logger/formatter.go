// Package logger configures logrus and implements a formatter that prefixes
// log messages with the instance name.
package logger

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// NamespaceFormatter is a logrus formatter that adds the 'instance' field to
// a log prefix for nicer formatted text output.
type NamespaceFormatter struct {
	Parent logrus.Formatter
}

// Format implements logrus.Formatter
func (f *NamespaceFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	if instance, ok := entry.Data["instance"].(string); ok {
		entry.Message = fmt.Sprintf("[%-12s] %s", instance, entry.Message)
	}
	return f.Parent.Format(entry)
}
