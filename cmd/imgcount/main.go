package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/John-Robertt/imgcount/internal/app/run"
	"github.com/John-Robertt/imgcount/internal/config"
	"github.com/John-Robertt/imgcount/internal/domain"
	"github.com/John-Robertt/imgcount/internal/logx"
)

var version = "dev"

// 退出码：0 成功；1 致命错误（配置或目录总数）；2 用法错误。
const (
	exitOK    = 0
	exitFatal = 1
	exitUsage = 2
)

// exitError 携带进程退出码；RunE 返回的错误都包成它，其余错误来自参数解析。
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func main() {
	root := newRootCmd(os.Stdout, os.Stderr)
	err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt),
	)
	if code := exitCode(err); code != exitOK {
		os.Exit(code)
	}
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUsage
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "imgcount",
		Short: "统计正在上映影片的 IMDb 详情页图片数量",
		Long: `imgcount 从 Rotten Tomatoes 拉取正在上映的影片列表，
解析每部影片的 IMDb 编号（目录缺失时通过 OMDb 查询），
然后抓取 IMDb 详情页并统计其中 <img> 标签的数量。`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.AddCommand(newRunCmd(stdout, stderr))
	return root
}

type runFlags struct {
	configFile string
	format     string
}

func newRunCmd(stdout, stderr io.Writer) *cobra.Command {
	rf := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "执行一次完整的抓取与计数",
		Long: `执行一次完整流程：目录总数 -> 分页抓取目录 -> 解析 IMDb 编号 -> 抓取详情页并计数。

配置来源（低 -> 高）：内置默认值、imgcount.toml（或 --config）、IMGCOUNT_* 环境变量（含 .env）、命令行参数。
stdout 为终端时输出表格，否则输出一个 JSON 报告；日志与进度只写 stderr。`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := runCmd(cmd, rf, stdout, stderr)
			if code == exitOK {
				return nil
			}
			if err == nil {
				err = fmt.Errorf("exit %d", code)
			}
			return &exitError{code: code, err: err}
		},
	}
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return fmt.Errorf("参数错误：%w", err)
	})

	f := cmd.Flags()
	f.StringVar(&rf.configFile, "config", "", "配置文件路径（默认读取当前目录下的 "+config.FileName+"，不存在则忽略）")
	f.StringVar(&rf.format, "format", "auto", "输出格式：auto|json|table（auto：stdout 为终端时输出表格）")
	f.String("catalog-api-key", "", "Rotten Tomatoes API key（必填）")
	f.String("catalog-base-url", config.DefaultCatalogBaseURL, "目录 API 地址")
	f.String("country", config.DefaultCountry, "目录国家/地区代码")
	f.Int("page-limit", config.DefaultPageLimit, "每页条数（1-50）")
	f.String("lookup-base-url", config.DefaultLookupBaseURL, "OMDb 查询地址")
	f.String("lookup-api-key", "", "OMDb API key（可选）")
	f.String("detail-base-url", config.DefaultDetailBaseURL, "IMDb 详情页地址")
	f.String("proxy-url", "", "HTTP 代理地址（设置后所有请求走代理）")
	f.String("user-agent", "", "固定使用的 User-Agent（默认轮换内置浏览器 UA）")
	f.String("selector", "", "按 CSS 选择器计数（默认统计 <img>）")
	f.String("log-level", config.DefaultLogLevel, "日志级别：debug|info|warn|error")
	f.String("log-file", "", "额外写入的滚动日志文件")
	return cmd
}

func runCmd(cmd *cobra.Command, rf *runFlags, stdout, stderr io.Writer) (int, error) {
	format := strings.ToLower(strings.TrimSpace(rf.format))
	switch format {
	case "auto", "json", "table":
	default:
		return exitUsage, fmt.Errorf("--format 只能是 auto、json 或 table，实际是 %q", rf.format)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return exitFatal, fmt.Errorf("读取当前目录失败：%w", err)
	}

	cfg, err := config.Load(config.Options{Dir: cwd, File: rf.configFile, Flags: cmd.Flags()})
	if err != nil {
		return exitFatal, err
	}

	log, closeLog, err := logx.New(logx.Options{Level: cfg.LogLevel, File: cfg.LogFile, Stderr: stderr})
	if err != nil {
		return exitFatal, &config.Error{Code: config.ErrCodeInvalid, Path: cfg.File, Err: err}
	}
	defer closeLog()

	runID := uuid.NewString()
	deps, err := run.NewDeps(cfg, log, runID)
	if err != nil {
		return exitFatal, err
	}

	var obs run.Observer
	if isTTY(stderr) {
		obs = newProgressUI(stderr)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	rr, err := run.Execute(ctx, cfg, deps, obs)
	if err != nil {
		return exitFatal, err
	}

	useTable := format == "table" || (format == "auto" && isTTY(stdout))
	if err := emitReport(stdout, stderr, rr, useTable); err != nil {
		return exitFatal, fmt.Errorf("输出报告失败：%w", err)
	}
	return exitOK, nil
}

func emitReport(stdout, stderr io.Writer, rr domain.RunReport, table bool) error {
	if table {
		_, err := fmt.Fprintln(stdout, renderReport(rr))
		return err
	}

	// stdout 必须且仅输出一个 RunReport JSON（摘要走 stderr）。
	enc := json.NewEncoder(stdout)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rr); err != nil {
		return err
	}
	fmt.Fprintln(stderr, summaryLine(rr.Summary))
	return nil
}

func summaryLine(s domain.ReportSummary) string {
	return fmt.Sprintf("完成：movies=%d counted=%d failed=%d images=%d",
		s.Movies, s.Counted, s.Failed, s.Images,
	)
}

func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
