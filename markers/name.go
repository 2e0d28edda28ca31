package markers

import (
	"fmt"
	"strings"
	"time"
)

const (
	timeFormat = "20060102-150405.000000000" // but need to s/./-/
	dotIndex   = 15                          // position of the '.'

	// Extension is the file extension of stored marker streams
	Extension = "markers"
)

// Kind tells which stream format a stored blob holds
type Kind string

const (
	KindSave Kind = "save"
	KindSnap Kind = "snap"
)

func Timestamp(ts time.Time) string {
	fileTimestamp := strings.Replace(
		ts.UTC().Format(timeFormat),
		".", "-", 1)
	return fileTimestamp
}

// Name returns the blob name for a stream written by instance at ts
func Name(instance string, kind Kind, ts time.Time) string {
	return fmt.Sprintf("%s__%s__%s.%s",
		instance,
		Timestamp(ts),
		kind,
		Extension,
	)
}

// ParseName parses a name created by Name. The kind and timestamp are taken
// from the end, so the instance may contain dots and underscores.
func ParseName(name string) (NameInfo, error) {
	var ni, empty NameInfo
	basename, found := strings.CutSuffix(name, "."+Extension)
	if !found {
		return empty, fmt.Errorf("unexpected extension: %s", name)
	}
	ni.FullName = name
	ni.Extension = Extension
	p := strings.Split(basename, "__")
	if len(p) < 3 {
		return empty, fmt.Errorf("not enough name parts: %s", name)
	}
	n := len(p)
	ni.InstanceID = strings.Join(p[:n-2], "__")
	if ni.InstanceID == "" {
		return empty, fmt.Errorf("empty instance: %s", name)
	}
	ni.TimestampString = p[n-2]
	ni.Kind = Kind(p[n-1])
	if ni.Kind != KindSave && ni.Kind != KindSnap {
		return empty, fmt.Errorf("unknown kind %q: %s", ni.Kind, name)
	}
	tss := ni.TimestampString
	if len(tss) != len(timeFormat) || tss[dotIndex] != '-' {
		return empty, fmt.Errorf("invalid timestamp format: %s in %s", tss, name)
	}
	tss = tss[:dotIndex] + "." + tss[dotIndex+1:] // replace second '-' with '.' for parsing
	ts, err := time.Parse(timeFormat, tss)        // returns time in UTC
	if err != nil {
		return empty, fmt.Errorf("timestamp parse error: %s", err)
	}
	ni.Timestamp = ts
	return ni, nil
}

type NameInfo struct {
	FullName        string
	Extension       string // "markers"
	InstanceID      string
	Kind            Kind
	TimestampString string
	Timestamp       time.Time
}
