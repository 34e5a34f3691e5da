package scan_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/icanthink42/alpha-solve-analytical/internal/scan"
)

func TestNextBracedBounds(t *testing.T) {
	src := `\int_{0}^{2}\left(x^2\right)dx`
	c, ok := scan.Next(src, 0)
	if !ok {
		t.Fatal("expected a match")
	}
	if c.Lower != "0" || c.Upper != "2" || c.Body != "x^2" || c.Var != "x" {
		t.Errorf("got %+v", c)
	}
	if c.Start != 0 || c.End != len(src) {
		t.Errorf("span = [%d,%d), want [0,%d)", c.Start, c.End, len(src))
	}
}

func TestNextUnbracedBounds(t *testing.T) {
	src := `\int_0^2\left(x\right)dx`
	c, ok := scan.Next(src, 0)
	if !ok {
		t.Fatal("expected a match")
	}
	if c.Lower != "0" || c.Upper != "2" || c.Body != "x" || c.Var != "x" {
		t.Errorf("got %+v", c)
	}
}

func TestNextNestedBraces(t *testing.T) {
	src := `\int_{\frac{a}{2}}^{b}\left(x\right)dx`
	c, ok := scan.Next(src, 0)
	if !ok {
		t.Fatal("expected a match")
	}
	if c.Lower != `\frac{a}{2}` {
		t.Errorf("lower = %q", c.Lower)
	}
}

func TestNextNestedLeftRight(t *testing.T) {
	src := `\int_{0}^{1}\left(\left(x+1\right)^2\right)dx`
	c, ok := scan.Next(src, 0)
	if !ok {
		t.Fatal("expected a match")
	}
	if c.Body != `\left(x+1\right)^2` {
		t.Errorf("body = %q", c.Body)
	}
}

func TestNextUnbalancedTerminates(t *testing.T) {
	for _, src := range []string{
		`\int_{0^{2}\left(x\right)dx`,
		`\int_{0}^{2}\left(x dx`,
		`\int_{0}^{2}\left(x\right)`,
		`\int_`,
	} {
		if _, ok := scan.Next(src, 0); ok {
			t.Errorf("Next(%q) matched, want no match", src)
		}
	}
}

func TestContains(t *testing.T) {
	if !scan.Contains(`y=\int_{0}^{2}\left(x^2\right)dx`) {
		t.Error("expected Contains true")
	}
	if scan.Contains(`y=x^2`) {
		t.Error("expected Contains false")
	}
	// Template with empty slots is not complete.
	if scan.Contains(`\int_{}^{}\left(\right)dx`) {
		t.Error("empty template should not count")
	}
}

func TestRewriteSingle(t *testing.T) {
	src := `y=\int_{0}^{2}\left(x^2\right)dx+1`
	got, stats := scan.Rewrite(src, func(c scan.Construct) (string, error) {
		return `\frac{8}{3}`, nil
	})
	if got != `y=\frac{8}{3}+1` {
		t.Errorf("got %q", got)
	}
	if stats.Rewritten != 1 || stats.Skipped != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestRewriteMultiple(t *testing.T) {
	src := `\int_{0}^{1}\left(x\right)dx+\int_{0}^{1}\left(y\right)dy`
	calls := 0
	got, stats := scan.Rewrite(src, func(c scan.Construct) (string, error) {
		calls++
		return fmt.Sprintf("R%d", calls), nil
	})
	if got != "R1+R2" {
		t.Errorf("got %q", got)
	}
	if stats.Rewritten != 2 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestRewriteSkipsFailedAndContinues(t *testing.T) {
	src := `\int_{0}^{1}\left(bad\right)dx+\int_{0}^{1}\left(x\right)dx`
	got, stats := scan.Rewrite(src, func(c scan.Construct) (string, error) {
		if c.Body == "bad" {
			return "", errors.New("cannot integrate")
		}
		return "OK", nil
	})
	if got != `\int_{0}^{1}\left(bad\right)dx+OK` {
		t.Errorf("got %q", got)
	}
	if stats.Rewritten != 1 || stats.Skipped != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestRewriteAllFailLeavesSourceIntact(t *testing.T) {
	src := `\int_{0}^{1}\left(x\right)dx`
	got, stats := scan.Rewrite(src, func(scan.Construct) (string, error) {
		return "", errors.New("nope")
	})
	if got != src {
		t.Errorf("got %q, want unchanged", got)
	}
	if stats.Rewritten != 0 || stats.Skipped != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestRewriteCapStopsRunawayReplacement(t *testing.T) {
	// A resolver that returns another integral would loop forever without
	// the pass cap.
	src := `\int_{0}^{1}\left(x\right)dx`
	_, stats := scan.RewriteMax(src, 5, func(c scan.Construct) (string, error) {
		return c.Raw(src), nil
	})
	if stats.Rewritten != 5 {
		t.Errorf("rewritten = %d, want cap 5", stats.Rewritten)
	}
}
