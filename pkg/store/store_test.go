package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johncui/rapport/pkg/model"
)

func TestOpenDrivers(t *testing.T) {
	tests := []struct {
		name    string
		opt     Options
		wantErr bool
	}{
		{"sqlite", Options{Driver: DriverSQLite, DBPath: filepath.Join(t.TempDir(), "a.db")}, false},
		{"default is sqlite", Options{DBPath: filepath.Join(t.TempDir(), "b.db")}, false},
		{"memory", Options{Driver: DriverMemory}, false},
		{"sqlite without path", Options{Driver: DriverSQLite}, true},
		{"unknown", Options{Driver: "postgres"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Open(context.Background(), tt.opt)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer b.Close()

			err = b.Within(context.Background(), func(ctx context.Context, s model.Stores) error {
				return s.People.Create(ctx, &model.Person{Owner: "o", Name: "Maya"})
			})
			assert.NoError(t, err)
		})
	}
}
