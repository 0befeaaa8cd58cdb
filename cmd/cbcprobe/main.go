package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"cbcprobe/internal/cbc"
	"cbcprobe/internal/probes/chaining"
	"cbcprobe/internal/probes/malleability"
	"cbcprobe/internal/probes/paddingcheck"
	"cbcprobe/internal/report"
	"cbcprobe/pkg/logx"
)

var (
	flagKeyHex   string
	flagIVHex    string
	flagIn       string
	flagOutFile  string
	flagOut      string
	flagHTML     string
	flagPDF      string
	flagActive   bool
	flagTrials   int
	flagTimeout  time.Duration
	flagLogLevel string
	flagDryRun   bool
)

func main() {
	root := &cobra.Command{
		Use:   "cbcprobe",
		Short: "From-scratch CBC mode with probes for its malleability",
		Long: `cbcprobe implements CBC encryption, decryption and PKCS#7 padding over an
opaque block cipher, and ships probes that demonstrate why the mode must not
be used without authentication: the IV and ciphertext are bit-for-bit
malleable, and padding validation is the pipeline's only (weak) check.`,
	}

	root.PersistentFlags().StringVar(&flagKeyHex, "key-hex", env("CBCP_KEY", ""), "Hex-encoded AES key (16/24/32 bytes)")
	root.PersistentFlags().StringVar(&flagOut, "out", env("CBCP_OUT", "report.json"), "JSON report output path")
	root.PersistentFlags().StringVar(&flagHTML, "html", "", "HTML report output path")
	root.PersistentFlags().StringVar(&flagPDF, "pdf", "", "PDF report output path")
	root.PersistentFlags().BoolVar(&flagActive, "active", false, "Enable randomized/statistical checks")
	root.PersistentFlags().DurationVar(&flagTimeout, "timeout", envDuration("CBCP_TIMEOUT", time.Minute), "Global timeout")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level: debug,info,warn,error")
	root.PersistentFlags().BoolVar(&flagDryRun, "dry-run", false, "Print actions without running probes")

	root.AddCommand(cmdEncrypt())
	root.AddCommand(cmdDecrypt())
	root.AddCommand(cmdProbe())
	root.AddCommand(cmdReport())

	if err := root.Execute(); err != nil {
		if ee, ok := err.(exitError); ok {
			fmt.Fprintln(os.Stderr, ee.err)
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(3)
	}
}

func cmdEncrypt() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Pad and CBC-encrypt a file; output is iv || ciphertext",
		RunE: func(cmd *cobra.Command, args []string) error {
			logx.SetLevel(flagLogLevel)
			c, err := cipherFromFlags()
			if err != nil {
				return exitCodeErr(3, err)
			}
			data, err := os.ReadFile(flagIn)
			if err != nil {
				return exitCodeErr(4, err)
			}
			n := c.BlockSize()
			iv, err := cbc.NewIV(n)
			if err != nil {
				return exitCodeErr(4, err)
			}
			padded, err := cbc.Pad(data, n)
			if err != nil {
				return exitCodeErr(4, err)
			}
			ct, err := cbc.Encrypt(c, iv, padded)
			if err != nil {
				return exitCodeErr(4, err)
			}
			if err := os.WriteFile(flagOutFile, append(iv, ct...), 0o644); err != nil {
				return exitCodeErr(4, err)
			}
			logx.Infof("encrypted %d bytes -> %s (iv||ct, %d bytes)", len(data), flagOutFile, n+len(ct))
			return nil
		},
	}
	cmd.Flags().StringVar(&flagIn, "in", "", "plaintext input path")
	cmd.Flags().StringVar(&flagOutFile, "out-file", "out.bin", "ciphertext output path")
	return cmd
}

func cmdDecrypt() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decrypt",
		Short: "CBC-decrypt and unpad a file",
		Long: `Reads iv || ciphertext produced by encrypt, or a bare ciphertext when
--iv-hex is given. Note there is no authentication: a tampered IV or
ciphertext decrypts to silently corrupted plaintext unless the padding
happens to break.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logx.SetLevel(flagLogLevel)
			c, err := cipherFromFlags()
			if err != nil {
				return exitCodeErr(3, err)
			}
			data, err := os.ReadFile(flagIn)
			if err != nil {
				return exitCodeErr(4, err)
			}
			n := c.BlockSize()
			var iv, ct []byte
			if flagIVHex != "" {
				iv, err = hex.DecodeString(flagIVHex)
				if err != nil {
					return exitCodeErr(3, fmt.Errorf("bad --iv-hex: %w", err))
				}
				ct = data
			} else {
				if len(data) < 2*n {
					return exitCodeErr(4, fmt.Errorf("input shorter than iv plus one block"))
				}
				iv, ct = data[:n], data[n:]
			}
			padded, err := cbc.Decrypt(c, iv, ct)
			if err != nil {
				return exitCodeErr(4, err)
			}
			pt, err := cbc.Unpad(padded, n)
			if err != nil {
				return exitCodeErr(4, err)
			}
			if err := os.WriteFile(flagOutFile, pt, 0o644); err != nil {
				return exitCodeErr(4, err)
			}
			logx.Infof("decrypted %d bytes -> %s", len(ct), flagOutFile)
			return nil
		},
	}
	cmd.Flags().StringVar(&flagIn, "in", "", "ciphertext input path")
	cmd.Flags().StringVar(&flagOutFile, "out-file", "out.txt", "plaintext output path")
	cmd.Flags().StringVar(&flagIVHex, "iv-hex", "", "hex IV when input holds bare ciphertext")
	return cmd
}

func cmdProbe() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe cbc",
		Short: "Run the malleability, padding and chaining probes",
		RunE: func(cmd *cobra.Command, args []string) error {
			logx.SetLevel(flagLogLevel)
			ctx, cancel := context.WithTimeout(cmd.Context(), flagTimeout)
			defer cancel()

			merged := &report.Results{TargetType: "cbc", GeneratedAt: time.Now().UTC()}
			mres, err := malleability.Run(ctx, malleability.Options{Active: flagActive, DryRun: flagDryRun})
			if err != nil {
				return exitCodeErr(4, err)
			}
			merged.Merge(mres)
			pres, err := paddingcheck.Run(ctx, paddingcheck.Options{Active: flagActive, DryRun: flagDryRun, Trials: flagTrials})
			if err != nil {
				return exitCodeErr(4, err)
			}
			merged.Merge(pres)
			cres, err := chaining.Run(ctx, chaining.Options{DryRun: flagDryRun})
			if err != nil {
				return exitCodeErr(4, err)
			}
			merged.Merge(cres)
			return writeReports(merged)
		},
	}
	cmd.Flags().IntVar(&flagTrials, "trials", envInt("CBCP_TRIALS", 4096), "trials for the padding acceptance-rate probe")
	return cmd
}

func cmdReport() *cobra.Command {
	var in []string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Convert/merge JSON to HTML/PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(in) == 0 {
				return fmt.Errorf("provide at least one JSON via --in")
			}
			merged, err := report.MergeJSONFiles(in)
			if err != nil {
				return err
			}
			return writeReports(merged)
		},
	}
	cmd.Flags().StringSliceVar(&in, "in", nil, "input JSONs to merge")
	return cmd
}

func cipherFromFlags() (cbc.BlockCipher, error) {
	if flagKeyHex == "" {
		return nil, fmt.Errorf("--key-hex or CBCP_KEY required")
	}
	key, err := hex.DecodeString(flagKeyHex)
	if err != nil {
		return nil, fmt.Errorf("bad --key-hex: %w", err)
	}
	return cbc.NewAES(key)
}

func writeReports(res *report.Results) error {
	if flagOut != "" {
		b, _ := json.MarshalIndent(res, "", "  ")
		if err := os.WriteFile(flagOut, b, 0o644); err != nil {
			return err
		}
		logx.Infof("wrote JSON report: %s", flagOut)
	}
	if flagHTML != "" {
		html := report.RenderHTML(res)
		if err := os.WriteFile(flagHTML, []byte(html), 0o644); err != nil {
			return err
		}
		logx.Infof("wrote HTML report: %s", flagHTML)
	}
	if flagPDF != "" {
		if err := report.RenderPDFToFile(res, flagPDF); err != nil {
			logx.Warnf("PDF generation failed, wrote HTML if provided: %v", err)
			return nil
		}
		logx.Infof("wrote PDF report: %s", flagPDF)
	}
	if res.HasFindings() {
		return exitCodeErr(2, fmt.Errorf("findings present"))
	}
	return nil
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		var i int
		fmt.Sscanf(v, "%d", &i)
		return i
	}
	return def
}

func envDuration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil { return d }
	}
	return def
}

type exitError struct {
	code int
	err  error
}

func (e exitError) Error() string { return e.err.Error() }

func exitCodeErr(code int, err error) error { return exitError{code: code, err: err} }

func init() { cobra.MousetrapHelpText = "" }
