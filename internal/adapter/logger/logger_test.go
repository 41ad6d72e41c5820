package logger_test

import (
	"testing"

	"github.com/MikeRez0/ypstorefront/internal/adapter/config"
	"github.com/MikeRez0/ypstorefront/internal/adapter/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		conf    config.App
		wantErr bool
	}{
		{name: "dev debug", conf: config.App{LogLevel: "debug", Mode: config.AppModeDevelop}},
		{name: "prod error", conf: config.App{LogLevel: "error", Mode: config.AppModeProduction}},
		{name: "bad level", conf: config.App{LogLevel: "loud", Mode: config.AppModeProduction}, wantErr: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			log, err := logger.NewLogger(&test.conf)
			if test.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, log)
		})
	}
}
