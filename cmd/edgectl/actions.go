package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/urfave/cli/v2"

	"github.com/GriffinCanCode/edgeoptimizer/internal/domain/extractor"
	"github.com/GriffinCanCode/edgeoptimizer/internal/domain/htmlstream"
	"github.com/GriffinCanCode/edgeoptimizer/internal/domain/rewriter"
	"github.com/GriffinCanCode/edgeoptimizer/internal/infrastructure/config"
	"github.com/GriffinCanCode/edgeoptimizer/internal/infrastructure/logging"
	"github.com/GriffinCanCode/edgeoptimizer/internal/infrastructure/server"
	"github.com/GriffinCanCode/edgeoptimizer/internal/providers/advisor"
	"github.com/GriffinCanCode/edgeoptimizer/internal/providers/origin"
	"github.com/GriffinCanCode/edgeoptimizer/internal/shared/types"
)

const sniffLen = 8192

func ExtractAction(c *cli.Context) error {
	data, cs, err := readDocument(c)
	if err != nil {
		return err
	}

	page, err := extractor.Extract(c.Context, bytes.NewReader(data), cs)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}

	out, err := sonic.ConfigStd.MarshalIndent(page, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, string(out))
	return err
}

func RewriteAction(c *cli.Context) error {
	data, cs, err := readDocument(c)
	if err != nil {
		return err
	}

	rules, err := config.LoadRules(c.String("rules"))
	if err != nil {
		return err
	}

	page, err := extractor.Extract(c.Context, bytes.NewReader(data), cs)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}

	var suggestion *types.Suggestion
	if path := c.String("suggestion"); path != "" {
		reply, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read suggestion: %w", err)
		}
		if suggestion, err = advisor.ParseReply(string(reply)); err != nil {
			return fmt.Errorf("parse suggestion: %w", err)
		}
	}

	return rewriter.New(rules).Transform(c.App.Writer, bytes.NewReader(data), rewriter.Input{
		Page:       page,
		Suggestion: suggestion,
		Base:       origin.NormalizeBase(c.String("origin")),
		Charset:    cs,
	})
}

func FetchAction(c *cli.Context) error {
	raw := c.Args().First()
	if raw == "" {
		return cli.Exit("fetch: URL argument required", 2)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return cli.Exit(fmt.Sprintf("fetch: invalid URL %q", raw), 2)
	}

	cfg := config.LoadOrDefault()
	logger, err := newLogger(c)
	if err != nil {
		return err
	}
	defer logger.Sync()

	parts, err := server.Build(cfg, logger, nil, nil)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(c.Context, http.MethodGet, u.RequestURI(), nil)
	if err != nil {
		return err
	}
	req.Header.Set(origin.HeaderOverride, u.Scheme+"://"+u.Host)

	res := parts.Pipeline.Handle(c.Context, req)
	defer res.Body.Close()

	if c.Bool("headers") {
		printHeaders(c.App.ErrWriter, res.Status, res.Header)
	}
	if _, err := io.Copy(c.App.Writer, res.Body); err != nil {
		return err
	}
	if res.Status >= http.StatusBadRequest {
		return cli.Exit(fmt.Sprintf("fetch: origin answered %d (%s)", res.Status, res.Outcome), 1)
	}
	return nil
}

// readDocument loads the FILE argument and detects its charset.
func readDocument(c *cli.Context) ([]byte, htmlstream.Charset, error) {
	path := c.Args().First()
	if path == "" {
		return nil, htmlstream.Charset{}, cli.Exit(c.Command.Name+": FILE argument required", 2)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, htmlstream.Charset{}, fmt.Errorf("read document: %w", err)
	}
	sniff := data
	if len(sniff) > sniffLen {
		sniff = sniff[:sniffLen]
	}
	return data, htmlstream.DetectCharset(sniff, c.String("content-type")), nil
}

func newLogger(c *cli.Context) (*logging.Logger, error) {
	cfg := logging.Config{Level: "warn", OutputPaths: []string{"stderr"}}
	if c.Bool("verbose") {
		cfg.Level = "debug"
		cfg.Development = true
	}
	return logging.New(cfg)
}

func printHeaders(w io.Writer, status int, h http.Header) {
	fmt.Fprintf(w, "%d %s\n", status, http.StatusText(status))
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s: %s\n", k, strings.Join(h[k], ", "))
	}
	fmt.Fprintln(w)
}
