package envstruct

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func lookupFromMap(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		val, ok := env[key]
		return val, ok
	}
}

func TestPopulate(t *testing.T) {
	type config struct {
		Addr         string `env:"TEST_ADDR"`
		TreePath     string `env:"TEST_TREE_PATH" envDefault:"./tree.json"`
		MaxHops      int    `env:"TEST_MAX_HOPS" envDefault:"100"`
		ignoredField string //nolint:unused // exercises the untagged path.
	}

	tests := []struct {
		name    string
		env     map[string]string
		want    config
		wantErr error
	}{
		{
			name: "all set",
			env:  map[string]string{"TEST_ADDR": "localhost:4000", "TEST_TREE_PATH": "/srv/tree.json", "TEST_MAX_HOPS": "7"},
			want: config{Addr: "localhost:4000", TreePath: "/srv/tree.json", MaxHops: 7},
		},
		{
			name: "defaults applied",
			env:  map[string]string{"TEST_ADDR": "localhost:4000"},
			want: config{Addr: "localhost:4000", TreePath: "./tree.json", MaxHops: 100},
		},
		{
			name:    "missing required",
			env:     map[string]string{},
			wantErr: ErrEnvNotSet,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg config
			err := Populate(&cfg, lookupFromMap(tt.env))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, cfg)
		})
	}
}

func TestPopulateInvalidValues(t *testing.T) {
	lookup := lookupFromMap(map[string]string{"TEST_PORT": "not-a-number"})

	var notStruct int
	require.ErrorIs(t, Populate(&notStruct, lookup), ErrInvalidValue)
	require.ErrorIs(t, Populate(notStruct, lookup), ErrInvalidValue)

	type badInt struct {
		Port int `env:"TEST_PORT"`
	}
	var cfg badInt
	require.Error(t, Populate(&cfg, lookup))

	type badKind struct {
		Enabled bool `env:"TEST_PORT"`
	}
	var kindCfg badKind
	require.ErrorIs(t, Populate(&kindCfg, lookup), ErrInvalidValue)
}
