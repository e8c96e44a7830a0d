// Command issue creates a verification token for a provisioned operator from
// the shell and writes its QR code to a PNG file.
//
//	issue -user admin -ttl 1800 -out token.png
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"time"
	_ "time/tzdata"

	"qrpass/internal/platform/config"
	"qrpass/internal/platform/logger"
	"qrpass/internal/platform/redis"
	"qrpass/internal/token"
	"qrpass/internal/token/models"
	"qrpass/internal/token/service"
	"qrpass/internal/token/store"
	"qrpass/pkg/requestcontext"
)

// allowedTTLs are the validity choices offered to operators, in seconds.
var allowedTTLs = []int{3600, 1800, 600}

type options struct {
	user string
	ttl  int
	out  string
	host string
}

func main() {
	var opts options
	flag.StringVar(&opts.user, "user", "", "operator username (required)")
	flag.IntVar(&opts.ttl, "ttl", 3600, "validity in seconds: 3600, 1800 or 600")
	flag.StringVar(&opts.out, "out", "token.png", "where to write the QR code PNG")
	flag.StringVar(&opts.host, "host", "", "host embedded in the URL (default PUBLIC_HOST)")
	flag.Parse()

	if err := run(context.Background(), opts, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "issue:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, stdout io.Writer) error {
	if opts.user == "" {
		return fmt.Errorf("-user is required")
	}
	if !slices.Contains(allowedTTLs, opts.ttl) {
		return fmt.Errorf("-ttl must be one of %v", allowedTTLs)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	// records must outlive this process to be verifiable by the server
	if cfg.StoreBackend != config.StoreBackendRedis {
		return fmt.Errorf("STORE_BACKEND=%s is not supported here: tokens would vanish on exit, use %s",
			cfg.StoreBackend, config.StoreBackendRedis)
	}
	op, ok := cfg.Operators.Lookup(opts.user)
	if !ok {
		return fmt.Errorf("operator %q is not provisioned", opts.user)
	}
	host := opts.host
	if host == "" {
		host = cfg.PublicHost
	}
	if host == "" {
		return fmt.Errorf("-host or PUBLIC_HOST is required")
	}

	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer client.Close()

	svc, err := token.NewService(store.NewRedis(client), cfg, logger.New(cfg.Log), nil)
	if err != nil {
		return err
	}
	return issue(requestcontext.WithOperator(ctx, op.Username), svc, op, host, opts, stdout)
}

func issue(ctx context.Context, svc *service.Service, op config.Operator, host string, opts options, stdout io.Writer) error {
	ttl := opts.ttl
	res, err := svc.Issue(ctx, models.IssueRequest{
		Fields:     fieldsFromIdentity(op.Identity),
		TTLSeconds: &ttl,
		Host:       host,
	})
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.out, res.QR, 0o600); err != nil {
		return fmt.Errorf("write qr: %w", err)
	}

	expires := res.ExpiresAtLocal
	if expires == "" {
		expires = res.ExpiresAt.Format(time.RFC3339)
	}
	fmt.Fprintf(stdout, "id:         %s\nurl:        %s\nqr:         %s\nvalid until %s\n", res.ID, res.URL, opts.out, expires)
	return nil
}

func fieldsFromIdentity(id config.Identity) models.Fields {
	f := models.Fields{
		models.FieldFirstName:  id.FirstName,
		models.FieldLastName:   id.LastName,
		models.FieldSecondName: id.SecondName,
		models.FieldBirthDay:   id.BirthDay,
		models.FieldSeries:     id.Series,
		models.FieldNumber:     id.Number,
	}
	if id.Timezone != "" {
		f[models.FieldTimezone] = id.Timezone
	}
	return f
}
