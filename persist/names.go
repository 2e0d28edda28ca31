package persist

import (
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/PowerDNS/markerstream/markers"
)

// parseNames parses the blob names of instance, skipping other blobs, and
// returns them sorted from oldest to newest.
func parseNames(names []string, instance string, l logrus.FieldLogger) []markers.NameInfo {
	var infos []markers.NameInfo
	for _, name := range names {
		ni, err := markers.ParseName(name)
		if err != nil {
			l.WithError(err).WithField("blob", name).Debug("Skipping invalid blob name")
			continue
		}
		if ni.InstanceID != instance {
			continue
		}
		infos = append(infos, ni)
	}
	slices.SortFunc(infos, func(a, b markers.NameInfo) int {
		if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
			return c
		}
		// A save and a snapshot at the same time: the snapshot was taken first
		return compareKind(a.Kind, b.Kind)
	})
	return infos
}

func compareKind(a, b markers.Kind) int {
	switch {
	case a == b:
		return 0
	case a == markers.KindSnap:
		return -1
	default:
		return 1
	}
}
