package di

import (
	"context"
	"flag"
	"io"
	"testing"

	"github.com/rasi23/pingpeek-phishguard/internal/api"
	"github.com/rasi23/pingpeek-phishguard/internal/core"
	"github.com/rasi23/pingpeek-phishguard/internal/ingest"
	"github.com/rasi23/pingpeek-phishguard/internal/ports"
	"github.com/rasi23/pingpeek-phishguard/internal/service"
)

const phishingEmail = "From: alert@secure-paypal.co\r\n" +
	"Subject: Urgent: account suspended\r\n" +
	"\r\n" +
	"Verify your password at http://secure-paypal.co/login immediately.\r\n"

func parse(t *testing.T, args ...string) *CLIFlags {
	t.Helper()
	fs := flag.NewFlagSet("phish-detector", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	flags, err := ParseArgs(fs, args)
	if err != nil {
		t.Fatalf("ParseArgs(%v): %v", args, err)
	}
	return flags
}

func TestParseArgs(t *testing.T) {
	flags := parse(t, "--json", "--mode", "legacy", "--whitelist", "example.com, example.org", "--file", "x.eml")
	if !flags.JSON || flags.Mode != "legacy" || flags.InputFile != "x.eml" {
		t.Errorf("flags = %+v", flags)
	}

	cfg := createConfigFromFlags(flags)
	if got := cfg.GetWhitelistedDomains(); len(got) != 2 || got[1] != "example.org" {
		t.Errorf("whitelist = %v", got)
	}
	if got := cfg.GetString("server.filter_type"); got != "cli" {
		t.Errorf("filter type = %q, want cli", got)
	}

	fs := flag.NewFlagSet("phish-detector", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if _, err := ParseArgs(fs, []string{"--no-such-flag"}); err == nil {
		t.Error("expected an error for an unknown flag")
	}
}

func TestCLIContainerAnalyses(t *testing.T) {
	container, err := BuildCLIContainer(parse(t, "--json", "--intel", "none"))
	if err != nil {
		t.Fatal(err)
	}

	err = container.Invoke(func(svc *service.PhishingService) error {
		report, err := svc.Analyze(context.Background(), phishingEmail)
		if err != nil {
			return err
		}
		if report.Result.Verdict != core.VerdictPhishing {
			t.Errorf("verdict = %s, want phishing", report.Result.Verdict)
		}
		if report.IntelSource != core.IntelSourcePlaceholder {
			t.Errorf("intel source = %q, want placeholder", report.IntelSource)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestCLIContainerRejectsUnknownMode(t *testing.T) {
	container, err := BuildCLIContainer(parse(t, "--mode", "bayesian"))
	if err != nil {
		t.Fatal(err)
	}
	if err := container.Invoke(func(ports.EmailFilter) {}); err == nil {
		t.Error("expected an error building a filter with an unknown mode")
	}
}

func TestDaemonContainerResolves(t *testing.T) {
	t.Setenv("PHISHGUARD_API_LISTEN_ADDRESS", "127.0.0.1:0")
	container, err := BuildContainer()
	if err != nil {
		t.Fatal(err)
	}

	err = container.Invoke(func(
		svc *service.PhishingService,
		server *api.Server,
		scheduler *ingest.Scheduler,
		filter ports.EmailFilter,
		repo core.EmailRepository,
	) error {
		if scheduler.Enabled() {
			t.Error("ingest should be disabled without sources")
		}
		report, err := svc.Analyze(context.Background(), phishingEmail)
		if err != nil {
			return err
		}
		_, err = repo.Get(context.Background(), report.EmailID)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
}
