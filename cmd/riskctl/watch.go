package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	pkgkafka "github.com/bibbank/riskcore/pkg/kafka"
)

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Tail assessment events from Kafka",
		Long: `Print every event published on the assessment topic, one JSON line each.
Without --group the reader starts at the newest offset.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := pkgkafka.Config{
				Brokers:       splitList(viper.GetString("kafka.brokers")),
				ConsumerGroup: viper.GetString("kafka.group"),
				TLS:           viper.GetBool("kafka.tls"),
			}
			out := cmd.OutOrStdout()
			handler := func(_ context.Context, msg pkgkafka.Message) error {
				_, err := fmt.Fprintf(out, "%s\t%s\t%s\n", msg.Time.Format("2006-01-02T15:04:05Z07:00"), msg.Headers["event_type"], msg.Value)
				return err
			}

			consumer, err := pkgkafka.NewConsumer(cfg, viper.GetString("kafka.topic"), handler, slog.Default())
			if err != nil {
				return err
			}
			defer consumer.Close()

			return consumer.Start(cmd.Context())
		},
	}

	cmd.Flags().String("brokers", "localhost:9092", "comma-separated Kafka brokers")
	cmd.Flags().String("topic", "risk.assessments", "assessment event topic")
	cmd.Flags().String("group", "", "consumer group; empty tails without committing")
	cmd.Flags().Bool("kafka-tls", false, "connect to Kafka over TLS")
	_ = viper.BindPFlag("kafka.brokers", cmd.Flags().Lookup("brokers"))
	_ = viper.BindPFlag("kafka.topic", cmd.Flags().Lookup("topic"))
	_ = viper.BindPFlag("kafka.group", cmd.Flags().Lookup("group"))
	_ = viper.BindPFlag("kafka.tls", cmd.Flags().Lookup("kafka-tls"))
	return cmd
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
