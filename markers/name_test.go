package markers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseName(t *testing.T) {
	ts := time.Date(2022, 1, 2, 3, 4, 5, 12345678, time.UTC)
	tests := []struct {
		testName string
		name     string
		want     NameInfo
		wantErr  bool
	}{
		{
			"roundtrip-save",
			Name("inst1", KindSave, ts),
			NameInfo{
				FullName:        "inst1__20220102-030405-012345678__save.markers",
				Extension:       "markers",
				InstanceID:      "inst1",
				Kind:            KindSave,
				TimestampString: "20220102-030405-012345678",
				Timestamp:       ts,
			},
			false,
		},
		{
			"roundtrip-snap",
			Name("inst1", KindSnap, ts),
			NameInfo{
				FullName:        "inst1__20220102-030405-012345678__snap.markers",
				Extension:       "markers",
				InstanceID:      "inst1",
				Kind:            KindSnap,
				TimestampString: "20220102-030405-012345678",
				Timestamp:       ts,
			},
			false,
		},
		{
			"dotted-instance",
			Name("db1.example.com", KindSave, ts),
			NameInfo{
				FullName:        "db1.example.com__20220102-030405-012345678__save.markers",
				Extension:       "markers",
				InstanceID:      "db1.example.com",
				Kind:            KindSave,
				TimestampString: "20220102-030405-012345678",
				Timestamp:       ts,
			},
			false,
		},
		{
			"underscored-instance",
			Name("a__b", KindSnap, ts),
			NameInfo{
				FullName:        "a__b__20220102-030405-012345678__snap.markers",
				Extension:       "markers",
				InstanceID:      "a__b",
				Kind:            KindSnap,
				TimestampString: "20220102-030405-012345678",
				Timestamp:       ts,
			},
			false,
		},
		{
			"extra-fields",
			"inst1__20220102-030405-012345678__snap__extra.markers",
			NameInfo{},
			true,
		},
		{
			"empty-instance",
			"__20220102-030405-012345678__snap.markers",
			NameInfo{},
			true,
		},
		{
			"double-extension",
			"inst1__20220102-030405-012345678__save.markers.gz",
			NameInfo{},
			true,
		},
		{
			"invalid",
			"invalid",
			NameInfo{},
			true,
		},
		{
			"invalid-ext",
			"inst1__20220102-030405-012345678__save.pb.gz",
			NameInfo{},
			true,
		},
		{
			"invalid-kind",
			"inst1__20220102-030405-012345678__full.markers",
			NameInfo{},
			true,
		},
		{
			"too-few-fields",
			"inst1__20220102-030405-012345678.markers",
			NameInfo{},
			true,
		},
		{
			"invalid-ts",
			"inst1__20220102-030405-012__save.markers",
			NameInfo{},
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.testName, func(t *testing.T) {
			got, err := ParseName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseName() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
