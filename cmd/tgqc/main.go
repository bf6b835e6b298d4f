// Command tgqc is the shading-language compiler's driver: it reads a
// source file, runs it through the lex/parse/codegen pipeline, prints
// the requested diagnostic dumps, and writes the resulting code and
// data buffers to disk.
//
// The dump-everything-by-default behaviour and the token/AST/hex
// print ordering are grounded on
// smasonuk-sicpu/cmd/ccompiler/main.go's driver; flag parsing is
// moved onto urfave/cli/v2 in place of the teacher's positional
// os.Args handling, and input-path resolution reuses
// smasonuk-sicpu/pkg/utils.GetPathInfo. The -jobs batch mode and -i
// REPL mode are ambient additions grounded on
// nspcc-dev-neo-go/cli/vm/cli.go's readline loop.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tgquartz/pkg/compiler"
)

func main() {
	app := &cli.App{
		Name:      "tgqc",
		Usage:     "compile a shading-language source file to TGQ bytecode",
		ArgsUsage: "<input_file> [input_file...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "tokens", Aliases: []string{"t"}, Usage: "print the token stream"},
			&cli.BoolFlag{Name: "ast", Aliases: []string{"a"}, Usage: "print the parsed AST"},
			&cli.BoolFlag{Name: "hex", Aliases: []string{"x"}, Usage: "print a hex dump of the code buffer"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "redirect textual output to `FILE` instead of stdout"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "enable debug-level logging"},
			&cli.IntFlag{Name: "jobs", Aliases: []string{"j"}, Usage: "compile N input files concurrently"},
			&cli.BoolFlag{Name: "interactive", Aliases: []string{"i"}, Usage: "drop into an interactive REPL instead of compiling a file"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "[Err ] %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	logger := zap.NewNop()
	if c.Bool("verbose") {
		l, err := zap.NewDevelopment()
		if err != nil {
			return cli.Exit(err, 1)
		}
		logger = l
	}
	defer logger.Sync()

	if c.Bool("interactive") {
		return runREPL(logger)
	}

	if c.Args().Len() > 1 || c.Int("jobs") > 0 {
		return runBatch(c, logger)
	}

	inPath := c.Args().Get(0)
	if inPath == "" {
		return cli.Exit("missing input file", 1)
	}

	return compileFile(c, logger, inPath)
}

// compileFile compiles a single source file and writes its dumps and
// output buffers, matching smasonuk-sicpu/cmd/ccompiler/main.go's
// per-file behaviour.
func compileFile(c *cli.Context, logger *zap.Logger, inPath string) error {
	src, err := os.ReadFile(inPath)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to read input file %q: %v", inPath, err), 1)
	}

	fullPath, parentDir, err := pathInfo(inPath)
	if err != nil {
		return cli.Exit(err, 1)
	}

	comp := compiler.New(logger)
	res, err := comp.CompileSource(string(src))
	if err != nil {
		return cli.Exit(fmt.Sprintf("compilation failed for %q: %v", inPath, err), 1)
	}

	out := os.Stdout
	if dest := c.String("out"); dest != "" {
		f, err := os.Create(dest)
		if err != nil {
			return cli.Exit(fmt.Sprintf("failed to open output file %q: %v", dest, err), 1)
		}
		defer f.Close()
		out = f
	}

	dumpTokens := c.Bool("tokens")
	dumpAST := c.Bool("ast")
	if !dumpTokens && !dumpAST {
		dumpTokens, dumpAST = true, true
	}

	if dumpTokens {
		fmt.Fprintf(out, "Tokens (%d)\n", len(res.Tokens))
		for _, tok := range res.Tokens {
			fmt.Fprintln(out, " ", tok)
		}
		fmt.Fprintln(out)
	}
	if dumpAST {
		fmt.Fprintln(out, "AST")
		fmt.Fprintln(out, res.Program.String())
		fmt.Fprintln(out)
	}
	if c.Bool("hex") {
		fmt.Fprintln(out, "Code (hex)")
		fmt.Fprintln(out, hexDump(res.Code))
		fmt.Fprintln(out)
	}

	codePath := filepath.Join(parentDir, strings.TrimSuffix(filepath.Base(fullPath), filepath.Ext(fullPath))+".tgq")
	if err := os.WriteFile(codePath, res.Code, 0o644); err != nil {
		return cli.Exit(fmt.Sprintf("failed to write code buffer %q: %v", codePath, err), 1)
	}

	dataPath := filepath.Join(parentDir, ".data.hex")
	if err := os.WriteFile(dataPath, res.Data, 0o644); err != nil {
		return cli.Exit(fmt.Sprintf("failed to write data buffer %q: %v", dataPath, err), 1)
	}

	fmt.Printf("compiled %d bytes code, %d bytes data -> %s, %s (%s)\n",
		len(res.Code), len(res.Data), codePath, dataPath, comp.CompileID)
	return nil
}

// runBatch compiles every input file concurrently, capping the number
// of in-flight compiles at -jobs (default: one per file, i.e.
// unbounded). Each file gets its own *compiler.Compiler instance, so
// no mutable state is shared across goroutines (spec.md §9's reified
// compile context is what makes this safe).
func runBatch(c *cli.Context, logger *zap.Logger) error {
	paths := c.Args().Slice()
	if len(paths) == 0 {
		return cli.Exit("missing input file", 1)
	}

	jobs := c.Int("jobs")
	if jobs <= 0 {
		jobs = len(paths)
	}

	g := new(errgroup.Group)
	g.SetLimit(jobs)
	for _, p := range paths {
		p := p
		g.Go(func() error {
			return compileFile(c, logger, p)
		})
	}
	return g.Wait()
}

// runREPL drops into an interactive shell that lexes, parses and
// disassembles one line at a time, grounded on
// nspcc-dev-neo-go/cli/vm/cli.go's readline-driven command loop.
// Meta-commands are prefixed with ':' (":tokens", ":ast", ":quit") and
// split into argv-style tokens with go-shellquote, matching that same
// file's use of shellquote.Split on REPL input.
func runREPL(logger *zap.Logger) error {
	rl, err := readline.New("tgqc> ")
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer rl.Close()

	showTokens, showAST := false, true
	comp := compiler.New(logger)

	fmt.Println("tgqc interactive mode. :tokens, :ast, :quit to exit.")
	for {
		line, err := rl.Readline()
		if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ":") {
			args, err := shellquote.Split(line[1:])
			if err != nil {
				fmt.Fprintf(os.Stderr, "[Err ] %v\n", err)
				continue
			}
			if len(args) == 0 {
				continue
			}
			switch args[0] {
			case "quit", "exit":
				return nil
			case "tokens":
				showTokens = !showTokens
			case "ast":
				showAST = !showAST
			default:
				fmt.Fprintf(os.Stderr, "[Err ] unknown meta-command %q\n", args[0])
			}
			continue
		}

		res, err := comp.CompileSource(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[Err ] %v\n", err)
			continue
		}
		if showTokens {
			fmt.Printf("Tokens (%d)\n", len(res.Tokens))
			for _, tok := range res.Tokens {
				fmt.Println(" ", tok)
			}
		}
		if showAST {
			fmt.Println(res.Program.String())
		}
		for _, l := range res.Disassembly {
			fmt.Println(" ", l)
		}
	}
}

// pathInfo resolves relPath to an absolute path and its containing
// directory, so sibling output files land next to the input
// regardless of the working directory tgqc was invoked from
// (smasonuk-sicpu/pkg/utils.GetPathInfo, unmodified).
func pathInfo(relPath string) (fullPath, parentDir string, err error) {
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}
	return fullPath, filepath.Dir(fullPath), nil
}

// hexDump renders buf with a space every 4 bytes and a newline every
// 16 bytes (spec.md §6 "Output files").
func hexDump(buf []byte) string {
	var sb strings.Builder
	for i, b := range buf {
		fmt.Fprintf(&sb, "%02x", b)
		switch {
		case (i+1)%16 == 0:
			sb.WriteByte('\n')
		case (i+1)%4 == 0:
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}
