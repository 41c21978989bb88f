package volume

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Match(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"zero filter", Filter{}, []string{"etc/hosts", "users", "empty", "empty_table", "bin/tool"}},
		{"kind", Filter{Kind: "table"}, []string{"users", "empty_table"}},
		{"kind upper case", Filter{Kind: "FILE"}, []string{"etc/hosts", "empty", "bin/tool"}},
		{"category ignores case", Filter{Category: "CONFIG"}, []string{"users", "empty_table"}},
		{"kind and category", Filter{Kind: "File", Category: "plugin"}, []string{"empty", "bin/tool"}},
		{"no match", Filter{Kind: "dir"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := NewDecoder(mixedStream().Stream()).Filtered(tt.filter)
			var got []string
			for it.Next() {
				got = append(got, it.Record().Name())
			}
			assert.NoError(t, it.Err())
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilter_IsZero(t *testing.T) {
	assert.True(t, Filter{}.IsZero())
	assert.False(t, Filter{Kind: "file"}.IsZero())
	assert.False(t, Filter{Category: "os"}.IsZero())
}
