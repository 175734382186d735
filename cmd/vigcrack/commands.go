package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/vigcrack/internal/config"
	"github.com/dgallion1/vigcrack/internal/parser"
	"github.com/dgallion1/vigcrack/internal/report"
	"github.com/dgallion1/vigcrack/internal/vigenere"
)

type crackFlags struct {
	file      string
	minRepeat int
	top       int
	keyLength int
	key       string
	table     string
	finder    string
	workers   int
	asJSON    bool
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "vigcrack",
		Short:         "Ciphertext-only cryptanalysis of Vigenère ciphers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log analysis stages to stderr")

	logger := func(cmd *cobra.Command) *slog.Logger {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	}

	root.AddCommand(newCrackCmd(logger))
	root.AddCommand(newCipherCmd("encrypt", "Encrypt text with a Vigenère key", vigenere.Encrypt))
	root.AddCommand(newCipherCmd("decrypt", "Decrypt text with a known Vigenère key", vigenere.Decrypt))
	return root
}

func newCrackCmd(logger func(*cobra.Command) *slog.Logger) *cobra.Command {
	var f crackFlags

	cmd := &cobra.Command{
		Use:   "crack [text]",
		Short: "Recover the key and plaintext from a ciphertext",
		Long: `Estimates the key length (Kasiski examination and index of coincidence),
cracks each column as a Caesar cipher against a letter frequency table and
prints the recovered plaintext with its original case and punctuation.

The ciphertext is read from the arguments, from --file (txt, md, csv, html,
pdf, docx) or from stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCrack(cmd, args, f, logger(cmd))
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.file, "file", "f", "", "Read ciphertext from a document")
	flags.IntVar(&f.minRepeat, "min-repeat", vigenere.DefaultMinRepeat, "Length of repeated substrings for Kasiski")
	flags.IntVar(&f.top, "top", vigenere.DefaultTopShifts, "Coincidence shifts reduced by GCD")
	flags.IntVar(&f.keyLength, "key-length", 0, "Skip the estimate and use this key length")
	flags.StringVar(&f.key, "key", "", "Decrypt with a known key instead of cracking")
	flags.StringVar(&f.table, "table", "", "Letter frequency table (YAML or JSON); default English")
	flags.StringVar(&f.finder, "finder", "brute", "Repetition search: brute or indexed")
	flags.IntVar(&f.workers, "workers", 1, "Concurrent column and repetition workers")
	flags.BoolVar(&f.asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func runCrack(cmd *cobra.Command, args []string, f crackFlags, log *slog.Logger) error {
	if f.keyLength < 0 {
		return fmt.Errorf("--key-length must be >= 0")
	}

	opts := vigenere.Options{
		MinRepeat: f.minRepeat,
		TopShifts: f.top,
		Workers:   f.workers,
		KeyLength: f.keyLength,
		Key:       f.key,
	}
	switch f.finder {
	case "brute":
		opts.Finder = vigenere.BruteForceFinder{Workers: f.workers}
	case "indexed":
		opts.Finder = vigenere.IndexedFinder{}
	default:
		return fmt.Errorf("unknown finder %q (want brute or indexed)", f.finder)
	}
	table, err := config.Config{FrequencyTable: f.table}.LoadTable()
	if err != nil {
		return err
	}
	opts.Table = table

	text, err := readCiphertext(cmd, args, f.file)
	if err != nil {
		return err
	}

	start := time.Now()
	res, err := vigenere.NewAnalyzer(opts).Analyze(cmd.Context(), text)
	if err != nil {
		log.Debug("analysis failed", "code", vigenere.Code(err), "error", err)
		if vigenere.IsAnalysisError(err) {
			fmt.Fprint(cmd.ErrOrStderr(), report.BuildFailure(err))
		}
		return err
	}
	log.Debug("analysis complete",
		"letters", len(res.Normalized),
		"kasiski_length", res.KasiskiLength,
		"coincidence_length", res.CoincidenceLength,
		"key_length", res.KeyLength,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	if res.KasiskiErr != nil {
		log.Debug("kasiski estimate unavailable", "error", res.KasiskiErr)
	}
	if res.Inconclusive {
		log.Warn("key length estimate is inconclusive; try --key-length or a longer ciphertext")
	}

	out := cmd.OutOrStdout()
	if f.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	return report.Write(out, res)
}

func newCipherCmd(name, short string, fn func(text, key string) (string, error)) *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   name + " --key KEY [text]",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readCiphertext(cmd, args, "")
			if err != nil {
				return err
			}
			result, err := fn(text, key)
			if err != nil {
				return err
			}
			if !strings.HasSuffix(result, "\n") {
				result += "\n"
			}
			_, err = io.WriteString(cmd.OutOrStdout(), result)
			return err
		},
	}
	cmd.Flags().StringVarP(&key, "key", "k", "", "Vigenère key (letters only)")
	cmd.MarkFlagRequired("key")
	return cmd
}

// readCiphertext takes the text from args, a document file or stdin, in
// that order of preference.
func readCiphertext(cmd *cobra.Command, args []string, file string) (string, error) {
	if len(args) > 0 {
		if file != "" {
			return "", fmt.Errorf("pass either text arguments or --file, not both")
		}
		return strings.Join(args, " "), nil
	}
	if file != "" {
		return readDocument(file)
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(b), nil
}

func readDocument(path string) (string, error) {
	p, err := parser.ForFile(path)
	if err != nil {
		return "", err
	}
	if pdf, ok := p.(*parser.PDFParser); ok {
		pdf.FallbackPdftotext = true
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := p.Parse(f, filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", path, err)
	}
	return doc.Text(), nil
}
