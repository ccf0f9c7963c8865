package cli

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BaeKey/smartedu/pkg/auth"
	"github.com/BaeKey/smartedu/pkg/errors"
)

// NewSignCmd creates the sign command.
func NewSignCmd() *cobra.Command {
	var (
		method string
		nonce  string
	)

	cmd := &cobra.Command{
		Use:   "sign URL",
		Short: "Print the auth header for a request",
		Long: `Sign a request with the login token from the credential store and print
the resulting header. Useful for calling the platform with other tools.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runSign(args[0], method, nonce)
		},
	}

	cmd.Flags().StringVarP(&method, "method", "X", http.MethodGet, "HTTP method of the request")
	cmd.Flags().StringVar(&nonce, "nonce", "", "Use this nonce instead of a fresh one")

	return cmd
}

type signView struct {
	Header string `json:"header"`
	Value  string `json:"value"`
	Nonce  string `json:"nonce"`
}

func runSign(rawURL, method, nonce string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	signer := loadSigner(cfg)
	if nonce != "" {
		signer.Nonces = auth.FixedNonce(nonce)
	}

	signed, err := signer.Sign(strings.ToUpper(method), rawURL)
	if err != nil {
		return fmt.Errorf("%s: %w", errors.Message(err), err)
	}

	if jsonOutput(cfg) {
		return printJSON(signView{Header: signer.HeaderKey(), Value: signed.Header, Nonce: signed.Nonce})
	}
	_, err = fmt.Fprintf(os.Stdout, "%s: %s\n", signer.HeaderKey(), signed.Header)
	return err
}
