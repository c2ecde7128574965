// registration-publish sends a registration report to JetStream, reading the
// report body from a file or stdin.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/carverauto/mco-registration/pkg/lifecycle"
	"github.com/carverauto/mco-registration/pkg/natsutil"
)

func main() {
	var (
		natsURL = flag.String("nats-url", "nats://127.0.0.1:4222", "NATS server URL")
		stream  = flag.String("stream", "mcollective", "JetStream stream name")
		subject = flag.String("subject", "mcollective.registration", "subject to publish on")
		domain  = flag.String("domain", "", "JetStream domain")
		sender  = flag.String("sender", "", "wrap the report in an envelope from this sender id")
		file    = flag.String("file", "-", "report file, - for stdin")
		timeout = flag.Duration("timeout", 5*time.Second, "publish timeout")
	)

	flag.Parse()

	body, err := readBody(*file)
	if err != nil {
		fail(err)
	}

	log := lifecycle.NewLoggerFromWriter(os.Stderr, zerolog.InfoLevel)

	nc, err := natsutil.Connect(*natsURL, "registration-publish", nil, log)
	if err != nil {
		fail(err)
	}
	defer nc.Close()

	js, err := natsutil.NewJetStream(nc, *domain)
	if err != nil {
		fail(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if _, err := natsutil.EnsureStream(ctx, js, *stream, *subject); err != nil {
		fail(err)
	}

	seq, err := natsutil.NewReportPublisher(js, *subject).Publish(ctx, *sender, body)
	if err != nil {
		fail(err)
	}

	log.Info().Uint64("seq", seq).Str("subject", *subject).Msg("Report published")
}

func readBody(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}

	return os.ReadFile(path)
}

func fail(err error) {
	_, _ = fmt.Fprintf(os.Stderr, "registration-publish: %v\n", err)
	os.Exit(1)
}
