// Command fetch-feeds lists the spreadsheet files in the SFTP drop and
// downloads them into a local directory for ingestion.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"material-recon/internal/config"
	"material-recon/internal/sftpclient"
)

func main() {
	var (
		dirFlag     = flag.String("dir", ".", "local directory for downloaded feeds")
		listFlag    = flag.Bool("list", false, "list remote feeds without downloading")
		timeoutFlag = flag.Duration("timeout", 5*time.Minute, "overall deadline")
	)
	flag.Parse()

	cfg := config.Load()
	config.NewLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	sftpCfg := sftpclient.Config{
		Host:                  cfg.SFTPHost,
		Port:                  cfg.SFTPPort,
		User:                  cfg.SFTPUser,
		Pass:                  cfg.SFTPPass,
		RemoteDir:             cfg.SFTPRemoteDir,
		InsecureIgnoreHostKey: cfg.SFTPInsecureHostKey,
	}

	feeds, err := sftpclient.ListFeeds(ctx, sftpCfg)
	if err != nil {
		log.Fatalf("list feeds: %v", err)
	}
	if len(feeds) == 0 {
		fmt.Println("no feeds in drop")
		return
	}

	for _, name := range feeds {
		if *listFlag {
			fmt.Println(name)
			continue
		}
		if _, err := os.Stat(filepath.Join(*dirFlag, name)); err == nil {
			fmt.Printf("skipping %s: already fetched\n", name)
			continue
		}
		local, err := sftpclient.FetchFile(ctx, sftpCfg, name, *dirFlag)
		if err != nil {
			log.Fatalf("fetch %s: %v", name, err)
		}
		fmt.Printf("fetched %s -> %s\n", name, local)
	}
}
