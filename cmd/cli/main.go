// Command securepass is a CLI client for the SecurePass service. Vaults are
// encrypted locally; the server only ever sees ciphertext.
package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/and161185/securepass/internal/api/securepassv1"
	"github.com/and161185/securepass/internal/convert"
	"github.com/and161185/securepass/internal/crypto/clientcrypto"
)

// ---- grpc dial ----

type transport struct {
	caPath    string
	insecure  bool
	plaintext bool
}

func loadTLS(caPath string, skipVerify bool) (credentials.TransportCredentials, error) {
	if skipVerify {
		return credentials.NewTLS(&tls.Config{InsecureSkipVerify: true}), nil
	}
	if caPath == "" {
		return credentials.NewClientTLSFromCert(nil, ""), nil
	}
	pem, err := os.ReadFile(caPath)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errors.New("bad CA cert")
	}
	return credentials.NewTLS(&tls.Config{RootCAs: pool}), nil
}

func (t transport) creds() (credentials.TransportCredentials, error) {
	if t.plaintext {
		return insecure.NewCredentials(), nil
	}
	return loadTLS(t.caPath, t.insecure)
}

func dial(addr string, t transport) (securepassv1.SecurePassClient, func(), error) {
	creds, err := t.creds()
	if err != nil {
		return nil, nil, err
	}
	cc, err := grpc.NewClient(addr, grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, nil, err
	}
	return securepassv1.NewSecurePassClient(cc), func() { _ = cc.Close() }, nil
}

// ---- utils ----

func readAll(p string, stdin io.Reader) ([]byte, error) {
	if p == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(p)
}

// promptPassword reads a password from the terminal without echo.
func promptPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("no terminal for password prompt; pass -p")
	}
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// rpcError strips the gRPC framing so users see the server's message.
func rpcError(err error) error {
	if st, ok := status.FromError(err); ok {
		return errors.New(st.Message())
	}
	return err
}

func usage(w io.Writer) {
	fmt.Fprint(w, `securepass CLI
Usage:
  securepass -addr HOST:PORT [-cacert file | -insecure | -plaintext] <cmd> [args]

Commands:
  version
  signup  -u <username> [-p <password>] [-in <file|->]   (empty vault when -in is omitted)
  pull    -u <username> [-p <password>] [-out <file>]    (prints to stdout by default)
  push    -u <username> [-p <password>] -in <file|->     (replaces the vault)
`)
}

// ---- commands ----

var (
	version   = "dev"
	buildDate = "unknown"
)

type app struct {
	client securepassv1.SecurePassClient
	stdin  io.Reader
	stdout io.Writer
	prompt func(string) (string, error)
}

type credFlags struct {
	user *string
	pass *string
}

func newCredFlags(fs *flag.FlagSet) credFlags {
	return credFlags{
		user: fs.String("u", "", "username"),
		pass: fs.String("p", "", "password (prompted when omitted)"),
	}
}

func (a *app) credentials(cf credFlags) (string, string, error) {
	if *cf.user == "" {
		return "", "", errors.New("need -u")
	}
	if *cf.pass != "" {
		return *cf.user, *cf.pass, nil
	}
	pw, err := a.prompt("Password: ")
	if err != nil {
		return "", "", err
	}
	if pw == "" {
		return "", "", errors.New("empty password")
	}
	return *cf.user, pw, nil
}

func (a *app) signup(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ContinueOnError)
	cf := newCredFlags(fs)
	in := fs.String("in", "", "vault plaintext file, - for stdin")
	if err := fs.Parse(args); err != nil {
		return err
	}
	user, pass, err := a.credentials(cf)
	if err != nil {
		return err
	}

	pt := []byte("{}")
	if *in != "" {
		if pt, err = readAll(*in, a.stdin); err != nil {
			return err
		}
	}
	vault, err := clientcrypto.EncryptVault(pass, user, pt)
	if err != nil {
		return err
	}

	req := convert.ToProtoRequest(convert.Request{Username: user, Password: pass, EncryptedVault: vault})
	if _, err := a.client.Signup(ctx, req); err != nil {
		return rpcError(err)
	}
	fmt.Fprintln(a.stdout, "ok")
	return nil
}

// login authenticates and returns the decrypted vault.
func (a *app) login(ctx context.Context, user, pass string) ([]byte, error) {
	resp, err := a.client.Login(ctx, convert.ToProtoRequest(convert.Request{Username: user, Password: pass}))
	if err != nil {
		return nil, rpcError(err)
	}
	pt, err := clientcrypto.DecryptVault(pass, user, convert.FromProtoVault(resp))
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return pt, nil
}

func (a *app) pull(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("pull", flag.ContinueOnError)
	cf := newCredFlags(fs)
	out := fs.String("out", "", "write plaintext to file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	user, pass, err := a.credentials(cf)
	if err != nil {
		return err
	}

	pt, err := a.login(ctx, user, pass)
	if err != nil {
		return err
	}
	if *out != "" {
		return os.WriteFile(*out, pt, 0o600)
	}
	_, err = a.stdout.Write(pt)
	return err
}

func (a *app) push(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("push", flag.ContinueOnError)
	cf := newCredFlags(fs)
	in := fs.String("in", "", "vault plaintext file, - for stdin")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return errors.New("need -in")
	}
	user, pass, err := a.credentials(cf)
	if err != nil {
		return err
	}
	pt, err := readAll(*in, a.stdin)
	if err != nil {
		return err
	}

	// The server does not check the password on update, so confirm it here
	// before replacing the vault with one sealed under it.
	if _, err := a.login(ctx, user, pass); err != nil {
		return err
	}
	vault, err := clientcrypto.EncryptVault(pass, user, pt)
	if err != nil {
		return err
	}
	if _, err := a.client.UpdateVault(ctx, convert.ToProtoRequest(convert.Request{Username: user, EncryptedVault: vault})); err != nil {
		return rpcError(err)
	}
	fmt.Fprintln(a.stdout, "ok")
	return nil
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "signup":
		return a.signup(ctx, args)
	case "pull":
		return a.pull(ctx, args)
	case "push":
		return a.push(ctx, args)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// main parses global flags, dials the server and dispatches the subcommand.
func main() {
	// global flags
	addr := flag.String("addr", "localhost:8443", "server addr")
	caPath := flag.String("cacert", "", "CA cert (PEM)")
	skipVerify := flag.Bool("insecure", false, "skip cert verify (dev)")
	plaintext := flag.Bool("plaintext", false, "no TLS (dev)")
	flag.Usage = func() { usage(os.Stderr) }
	flag.Parse()

	if flag.NArg() < 1 {
		usage(os.Stderr)
		os.Exit(2)
	}
	cmd := flag.Arg(0)
	if cmd == "version" {
		fmt.Printf("securepass %s (%s)\n", version, buildDate)
		return
	}

	client, closeConn, err := dial(*addr, transport{caPath: *caPath, insecure: *skipVerify, plaintext: *plaintext})
	if err != nil {
		fail(err)
	}
	defer closeConn()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &app{client: client, stdin: os.Stdin, stdout: os.Stdout, prompt: promptPassword}
	if err := a.run(ctx, cmd, flag.Args()[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		closeConn()
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
