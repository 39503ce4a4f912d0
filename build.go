//go:build ignore

// build.go - routecleaner build script
// Usage: go run build.go [-target=TARGET] [-v]
// Targets: build, test, release, clean

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const (
	module  = "routecleaner"
	mainPkg = "./cmd/routecleaner"
)

// BuildContext holds configuration for the build process
type BuildContext struct {
	Verbose bool
	GOOS    string
	GOARCH  string
}

var (
	distDir = "dist"

	// release platforms as GOOS/GOARCH
	releasePlatforms = []string{
		"linux/amd64",
		"linux/arm64",
		"windows/amd64",
		"darwin/arm64",
	}

	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

func main() {
	target := flag.String("target", "build", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	printHeader()
	startTime := time.Now()

	ctx := &BuildContext{
		Verbose: *verbose,
		GOOS:    runtime.GOOS,
		GOARCH:  runtime.GOARCH,
	}

	switch *target {
	case "build":
		buildExecutable(ctx)
	case "test":
		runTests(ctx.Verbose)
	case "release":
		buildRelease(ctx)
	case "clean":
		clean()
	default:
		showHelp()
		os.Exit(1)
	}

	printSuccess(fmt.Sprintf("Done in %s", time.Since(startTime).Round(time.Millisecond)))
}

func printHeader() {
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println(colorCyan + "       routecleaner - Build System         " + colorReset)
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println()
}

func printInfo(msg string) {
	fmt.Printf("%s[INFO]%s %s\n", colorBlue, colorReset, msg)
}

func printSuccess(msg string) {
	fmt.Printf("%s[SUCCESS]%s %s\n", colorGreen, colorReset, msg)
}

func printError(msg string) {
	fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg)
}

func printWarning(msg string) {
	fmt.Printf("%s[WARNING]%s %s\n", colorYellow, colorReset, msg)
}

// ldflags stamps build metadata into pkg/contracts
func ldflags() string {
	flags := fmt.Sprintf("-s -w -X %s/pkg/contracts.BuildTime=%s",
		module, time.Now().UTC().Format(time.RFC3339))
	if commit := gitCommit(); commit != "" {
		flags += fmt.Sprintf(" -X %s/pkg/contracts.GitCommit=%s", module, commit)
	}
	return flags
}

func gitCommit() string {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		printWarning("git commit unavailable, version will report \"unknown\"")
		return ""
	}
	return strings.TrimSpace(string(out))
}

func outputName(goos, goarch string) string {
	name := fmt.Sprintf("%s-%s-%s", module, goos, goarch)
	if goos == "windows" {
		name += ".exe"
	}
	return name
}

func buildExecutable(ctx *BuildContext) {
	outputPath := filepath.Join(distDir, outputName(ctx.GOOS, ctx.GOARCH))
	printInfo(fmt.Sprintf("Building %s...", outputPath))

	args := []string{"build", "-trimpath", "-ldflags", ldflags(), "-o", outputPath, mainPkg}
	if ctx.Verbose {
		args = append([]string{"build", "-v"}, args[1:]...)
	}

	cmd := exec.Command("go", args...)
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0", "GOOS="+ctx.GOOS, "GOARCH="+ctx.GOARCH)
	cmd.Stderr = os.Stderr
	if ctx.Verbose {
		fmt.Printf("Running: go %s\n", strings.Join(args, " "))
		cmd.Stdout = os.Stdout
	}

	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Failed to build %s: %v", outputPath, err))
		os.Exit(1)
	}

	if info, err := os.Stat(outputPath); err == nil {
		sizeMB := float64(info.Size()) / 1024 / 1024
		printSuccess(fmt.Sprintf("Built %s (%.1f MB)", outputPath, sizeMB))
	}
}

func runTests(verbose bool) {
	printInfo("Running Go tests...")
	args := []string{"test", "-race"}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "./...")

	cmd := exec.Command("go", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Go tests failed: %v", err))
		os.Exit(1)
	}
	printSuccess("All tests passed")
}

// buildRelease cross-compiles every release platform into a clean dist
func buildRelease(ctx *BuildContext) {
	printInfo("Building release binaries...")
	clean()

	for _, platform := range releasePlatforms {
		goos, goarch, _ := strings.Cut(platform, "/")
		buildExecutable(&BuildContext{Verbose: ctx.Verbose, GOOS: goos, GOARCH: goarch})
	}

	content := fmt.Sprintf("%s\nBuilt: %s\n", module, time.Now().Format("2006-01-02 15:04:05"))
	if err := os.WriteFile(filepath.Join(distDir, "VERSION.txt"), []byte(content), 0644); err != nil {
		printWarning(fmt.Sprintf("Failed to write VERSION.txt: %v", err))
	}
	printSuccess("Release build completed")
}

func clean() {
	printInfo("Cleaning build artifacts...")
	if err := os.RemoveAll(distDir); err != nil {
		printError(fmt.Sprintf("Failed to clean %s: %v", distDir, err))
		return
	}
	printSuccess("Build artifacts cleaned")
}

func showHelp() {
	fmt.Println("Usage: go run build.go -target=TARGET [-v]")
	fmt.Println()
	fmt.Println("Targets:")
	fmt.Println("  build    build routecleaner for this platform into dist/")
	fmt.Println("  test     run all Go tests with the race detector")
	fmt.Println("  release  cross-compile release binaries")
	fmt.Println("  clean    remove dist/")
}
