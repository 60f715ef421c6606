package kit

import "go.uber.org/zap"

// NewLogger builds the JSON production logger; dev switches to the
// human-readable console encoder with debug level.
func NewLogger(service string, dev bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if dev {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.InitialFields = map[string]any{"service": service}
	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}
