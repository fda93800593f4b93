package handlers

import (
	"os"
	"sync"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"k8s.io/klog/v2"
	ctrl "sigs.k8s.io/controller-runtime"
)

// newLogger builds the console logger used for provisioning progress.
// Verbose enables debug output with caller locations.
func newLogger(verbose bool) logr.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), level)

	var opts []zap.Option
	if verbose {
		opts = append(opts, zap.AddCaller())
	}
	return zapr.NewLogger(zap.New(core, opts...))
}

var kubeLoggingOnce sync.Once

// initKubeLogging routes client-go and controller-runtime log output
// through the given logger so library messages follow the CLI's
// verbosity instead of landing on stderr unformatted.
var initKubeLogging = func(logger logr.Logger) {
	kubeLoggingOnce.Do(func() {
		ctrl.SetLogger(logger)
		klog.SetLogger(logger)
	})
}
