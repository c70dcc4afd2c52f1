package config

import (
	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/statplot/pkg/figure"
)

// Server defaults.
const (
	DefaultPort         = 8080
	DefaultHost         = "0.0.0.0"
	DefaultMaxBodyBytes = 32 << 20
	maxPort             = 65535
)

// Figure defaults.
const (
	DefaultFormat = "html"
	DefaultTheme  = "light"
)

func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("figure.width", figure.DefaultWidth)
	viperCfg.SetDefault("figure.height", figure.DefaultHeight)
	viperCfg.SetDefault("figure.title_size", figure.DefaultTitleSize)
	viperCfg.SetDefault("figure.label_size", figure.DefaultLabelSize)
	viperCfg.SetDefault("figure.tick_size", figure.DefaultTickSize)
	viperCfg.SetDefault("figure.format", DefaultFormat)
	viperCfg.SetDefault("figure.theme", DefaultTheme)

	viperCfg.SetDefault("style.line_color", "")
	viperCfg.SetDefault("style.shade", true)
	viperCfg.SetDefault("style.confidence_interval", "none")
	viperCfg.SetDefault("style.orientation", "")

	viperCfg.SetDefault("palette.histogram", "black")
	viperCfg.SetDefault("palette.mean", "red")
	viperCfg.SetDefault("palette.marker", "black")
	viperCfg.SetDefault("palette.fit", "red")
	viperCfg.SetDefault("palette.kde", []string{})
	viperCfg.SetDefault("palette.roc", "darkorange")
	viperCfg.SetDefault("palette.baseline", "navy")
	viperCfg.SetDefault("palette.residual", "")
	viperCfg.SetDefault("palette.colormap", figure.ColormapRdBu)

	viperCfg.SetDefault("server.host", DefaultHost)
	viperCfg.SetDefault("server.port", DefaultPort)
	viperCfg.SetDefault("server.read_timeout", "30s")
	viperCfg.SetDefault("server.write_timeout", "60s")
	viperCfg.SetDefault("server.idle_timeout", "120s")
	viperCfg.SetDefault("server.max_body_bytes", DefaultMaxBodyBytes)
	viperCfg.SetDefault("server.data_dir", "")

	viperCfg.SetDefault("logging.level", "info")
	viperCfg.SetDefault("logging.format", "text")

	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_headers", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
	viperCfg.SetDefault("telemetry.sample_ratio", 1.0)
	viperCfg.SetDefault("telemetry.environment", "")
	viperCfg.SetDefault("telemetry.prometheus", true)
}
