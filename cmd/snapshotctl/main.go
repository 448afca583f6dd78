// Command snapshotctl prints the sections kept by the configured snapshot store
// and verifies their checksums.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/Temutjin2k/rideshare-ledger/config"
	"github.com/Temutjin2k/rideshare-ledger/internal/app"
	"github.com/Temutjin2k/rideshare-ledger/internal/service/persistence"
	"github.com/Temutjin2k/rideshare-ledger/pkg/logger"
)

var configPath = flag.String("config-path", "config.yaml", "Path to the config yaml file")

func main() {
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	store, closeStore, err := app.OpenStore(ctx, *cfg, logger.Nop())
	if err != nil {
		log.Fatal(err)
	}
	defer closeStore()

	infos, err := store.List(ctx)
	if err != nil {
		log.Fatalf("list snapshots: %v", err)
	}
	if len(infos) == 0 {
		fmt.Printf("no snapshots in %s store\n", cfg.Storage.Driver)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SECTION\tBYTES\tUPDATED\tSAVED\tCHECKSUM")

	for _, info := range infos {
		saved, status := "-", "ok"

		raw, err := store.Load(ctx, info.Section)
		if err != nil {
			status = err.Error()
		} else if env, err := persistence.Decode(raw); err != nil {
			status = err.Error()
		} else {
			saved = env.SavedAt.Format(time.RFC3339)
		}

		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", info.Section, info.Bytes, info.UpdatedAt.Format(time.RFC3339), saved, status)
	}

	if err := w.Flush(); err != nil {
		log.Fatal(err)
	}
}
