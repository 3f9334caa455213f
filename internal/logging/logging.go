// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options 描述日志输出配置
type Options struct {
	Level string
	// File 非空时额外写入按大小轮转的日志文件
	File string
}

// Setup 配置标准 logrus logger 并返回它，关闭函数负责释放日志文件
func Setup(opts Options) (*logrus.Logger, func() error, error) {
	logger := logrus.StandardLogger()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	level, err := logrus.ParseLevel(strings.TrimSpace(opts.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	closeFn := func() error { return nil }
	var out io.Writer = os.Stderr

	if file := strings.TrimSpace(opts.File); file != "" {
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return nil, nil, err
		}
		rotating := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		out = io.MultiWriter(os.Stderr, rotating)
		closeFn = rotating.Close
	}

	logger.SetOutput(out)
	return logger, closeFn, nil
}
