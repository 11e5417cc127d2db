// Package logx 构造运行期使用的 logrus logger。
//
// 日志只写 stderr（以及可选的滚动日志文件）；stdout 保留给最终报告。
package logx

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	// Level: debug / info / warn / error，空值视为 warn。
	Level string
	// File 非空时额外写入滚动日志文件。
	File string

	FileSizeMB  int
	FileBackups int
	FileMaxAge  int
	Compress    bool

	// Stderr 用于测试替换；为 nil 时使用 os.Stderr。
	Stderr io.Writer
}

// New 返回 logger 以及一个关闭函数（用于关闭日志文件）。
func New(opts Options) (*logrus.Logger, func() error, error) {
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	out := opts.Stderr
	if out == nil {
		out = os.Stderr
	}

	l := logrus.New()
	l.SetLevel(lvl)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})

	closeFn := func() error { return nil }
	if f := strings.TrimSpace(opts.File); f != "" {
		lj := &lumberjack.Logger{
			Filename:   f,
			MaxSize:    orDefault(opts.FileSizeMB, 10), // megabytes
			MaxBackups: orDefault(opts.FileBackups, 3),
			MaxAge:     orDefault(opts.FileMaxAge, 28), // days
			Compress:   opts.Compress,
		}
		out = io.MultiWriter(out, lj)
		closeFn = lj.Close
	}
	l.SetOutput(out)
	return l, closeFn, nil
}

// ParseLevel 把配置中的级别名映射为 logrus.Level；"warning" 与 "warn" 等价。
func ParseLevel(s string) (logrus.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return logrus.WarnLevel, nil
	}
	return logrus.ParseLevel(s)
}

// Discard 返回一个丢弃所有输出的 logger（测试与库调用方使用）。
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
