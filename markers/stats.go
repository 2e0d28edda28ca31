package markers

import (
	"github.com/c2h5oh/datasize"
	"github.com/sirupsen/logrus"
)

// Stats describes what a save or snapshot call wrote
type Stats struct {
	Resources     int               // resource blocks written
	Markers       int               // markers written
	Dropped       int               // non-persistent markers skipped
	NullFallbacks int64             // values of unsupported kinds written as null
	InternedTypes int               // size of the type table(s) used
	Size          datasize.ByteSize // bytes written
}

// Add returns the sum of two Stats
func (s Stats) Add(o Stats) Stats {
	s.Resources += o.Resources
	s.Markers += o.Markers
	s.Dropped += o.Dropped
	s.NullFallbacks += o.NullFallbacks
	s.InternedTypes += o.InternedTypes
	s.Size += o.Size
	return s
}

// Fields returns the stats as log fields
func (s Stats) Fields() logrus.Fields {
	return logrus.Fields{
		"resources":      s.Resources,
		"markers":        s.Markers,
		"dropped":        s.Dropped,
		"null_fallbacks": s.NullFallbacks,
		"types":          s.InternedTypes,
		"size":           s.Size.HumanReadable(),
	}
}
