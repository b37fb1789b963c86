// Command benchguard runs the package benchmarks under fixed conditions and
// fails when a guarded benchmark exceeds its configured time or allocation
// ceiling. The coarse-energy hot path is required to stay allocation-free;
// this is the regression fence for that.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

type benchmarkGuard struct {
	MaxNsOp     float64 `json:"max_ns_op"`
	MaxAllocsOp float64 `json:"max_allocs_op"`
}

type guardTarget struct {
	Package    string                    `json:"package"`
	BenchRegex string                    `json:"bench_regex"`
	Benchmarks map[string]benchmarkGuard `json:"benchmarks"`
}

type guardConfig struct {
	Count     int           `json:"count"`
	Benchtime string        `json:"benchtime"`
	Targets   []guardTarget `json:"targets"`
}

type sample struct {
	NsOp     float64
	AllocsOp float64
}

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "tools/bench_guardrails.json", "path to bench guardrails config")
	flag.Parse()

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fatalf("load config: %v", err)
	}
	if err := validateConfig(cfg); err != nil {
		fatalf("invalid config: %v", err)
	}

	var violations []string
	for _, target := range cfg.Targets {
		out, err := runBench(cfg, target)
		if err != nil {
			fatalf("run benchmarks for %s: %v", target.Package, err)
		}
		samples, err := parseBenchmarkOutput(out)
		if err != nil {
			fatalf("parse benchmark output for %s: %v", target.Package, err)
		}
		violations = append(violations, evaluate(target, samples)...)
	}

	if len(violations) > 0 {
		for _, v := range violations {
			fmt.Fprintln(os.Stderr, v)
		}
		os.Exit(1)
	}
	fmt.Println("benchguard: all configured benchmarks are within guardrails")
}

func loadConfig(path string) (*guardConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg guardConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validateConfig(cfg *guardConfig) error {
	if cfg.Count <= 0 {
		return errors.New("count must be > 0")
	}
	if cfg.Benchtime == "" {
		return errors.New("benchtime must be set")
	}
	if len(cfg.Targets) == 0 {
		return errors.New("targets must be non-empty")
	}
	for _, target := range cfg.Targets {
		if target.Package == "" {
			return errors.New("target package must be set")
		}
		if target.BenchRegex == "" {
			return errors.New("target bench_regex must be set")
		}
		if len(target.Benchmarks) == 0 {
			return fmt.Errorf("target %s has no guarded benchmarks", target.Package)
		}
	}
	return nil
}

func runBench(cfg *guardConfig, target guardTarget) ([]byte, error) {
	args := []string{
		"test",
		"-run", "^$",
		"-bench", target.BenchRegex,
		"-benchmem",
		"-count", strconv.Itoa(cfg.Count),
		"-benchtime", cfg.Benchtime,
		"-cpu", "1",
		target.Package,
	}

	cmd := exec.Command("go", args...)
	cmd.Env = append(os.Environ(), "GOMAXPROCS=1")

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	fmt.Print(buf.String())
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var benchLineRe = regexp.MustCompile(`^(Benchmark\S+?)(?:-\d+)?\s+\d+\s+([0-9.eE+\-]+)\s+ns/op\s+(?:[0-9.eE+\-]+)\s+B/op\s+([0-9.eE+\-]+)\s+allocs/op$`)

func parseBenchmarkOutput(out []byte) (map[string][]sample, error) {
	result := make(map[string][]sample)
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "Benchmark") {
			continue
		}
		m := benchLineRe.FindStringSubmatch(line)
		if len(m) != 4 {
			continue
		}
		name := m[1]
		nsOp, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return nil, fmt.Errorf("parse ns/op for %s: %w", name, err)
		}
		allocsOp, err := strconv.ParseFloat(m[3], 64)
		if err != nil {
			return nil, fmt.Errorf("parse allocs/op for %s: %w", name, err)
		}
		result[name] = append(result[name], sample{NsOp: nsOp, AllocsOp: allocsOp})
	}
	if len(result) == 0 {
		return nil, errors.New("no benchmark rows parsed")
	}
	return result, nil
}

func evaluate(target guardTarget, samples map[string][]sample) []string {
	violations := make([]string, 0)
	keys := make([]string, 0, len(target.Benchmarks))
	for k := range target.Benchmarks {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, name := range keys {
		guard := target.Benchmarks[name]
		rows, ok := samples[name]
		if !ok || len(rows) == 0 {
			violations = append(violations, fmt.Sprintf("benchguard: missing benchmark in output: %s", name))
			continue
		}
		nsOp, allocsOp := medianMetrics(rows)
		fmt.Printf("benchguard: %-28s ns/op=%.1f (max %.1f), allocs/op=%.1f (max %.1f)\n",
			name, nsOp, guard.MaxNsOp, allocsOp, guard.MaxAllocsOp)
		if nsOp > guard.MaxNsOp {
			violations = append(violations, fmt.Sprintf("benchguard: %s ns/op regression: measured %.1f > max %.1f", name, nsOp, guard.MaxNsOp))
		}
		if allocsOp > guard.MaxAllocsOp {
			violations = append(violations, fmt.Sprintf("benchguard: %s allocs/op regression: measured %.1f > max %.1f", name, allocsOp, guard.MaxAllocsOp))
		}
	}
	return violations
}

func medianMetrics(rows []sample) (nsOp, allocsOp float64) {
	nsVals := make([]float64, 0, len(rows))
	allocVals := make([]float64, 0, len(rows))
	for _, r := range rows {
		nsVals = append(nsVals, r.NsOp)
		allocVals = append(allocVals, r.AllocsOp)
	}
	return median(nsVals), median(allocVals)
}

func median(values []float64) float64 {
	sort.Float64s(values)
	n := len(values)
	if n%2 == 1 {
		return values[n/2]
	}
	return (values[n/2-1] + values[n/2]) / 2
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "benchguard: "+format+"\n", args...)
	os.Exit(2)
}
