// Package sftpclient pulls feed files from the SFTP drop where the system
// of record lands its exports.
package sftpclient

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

type Config struct {
	Host                  string
	Port                  int
	User                  string
	Pass                  string
	RemoteDir             string
	InsecureIgnoreHostKey bool
}

func dial(ctx context.Context, cfg Config) (*ssh.Client, *sftp.Client, error) {
	if cfg.Host == "" || cfg.User == "" || cfg.Pass == "" {
		return nil, nil, fmt.Errorf("sftp: missing env SFTP_HOST / SFTP_USER / SFTP_PASS")
	}
	if cfg.Port <= 0 {
		cfg.Port = 22
	}

	// TODO: replace with a known_hosts callback once the drop host gets a
	// stable key.
	if !cfg.InsecureIgnoreHostKey {
		return nil, nil, fmt.Errorf("sftp: host key verification unavailable; set SFTP_INSECURE_HOST_KEY=true to connect anyway")
	}
	cb := ssh.InsecureIgnoreHostKey()
	sshCfg := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            []ssh.AuthMethod{ssh.Password(cfg.Pass)},
		HostKeyCallback: cb,
		Timeout:         20 * time.Second,
	}
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	type dialRes struct {
		client *ssh.Client
		err    error
	}
	ch := make(chan dialRes, 1)
	go func() {
		c, err := ssh.Dial("tcp", addr, sshCfg)
		ch <- dialRes{client: c, err: err}
	}()

	var sshClient *ssh.Client
	select {
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("sftp: dial canceled: %w", ctx.Err())
	case r := <-ch:
		if r.err != nil {
			return nil, nil, fmt.Errorf("sftp: dial error: %w", r.err)
		}
		sshClient = r.client
	}

	sftpCli, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return nil, nil, fmt.Errorf("sftp: new client: %w", err)
	}
	return sshClient, sftpCli, nil
}

// ListFeeds returns the feed file names present in the remote drop
// directory, spreadsheets only.
func ListFeeds(ctx context.Context, cfg Config) ([]string, error) {
	if cfg.RemoteDir == "" {
		cfg.RemoteDir = "/"
	}
	sshClient, cli, err := dial(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer sshClient.Close()
	defer cli.Close()

	entries, err := cli.ReadDir(cfg.RemoteDir)
	if err != nil {
		return nil, fmt.Errorf("sftp: list %s: %w", cfg.RemoteDir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".xlsx", ".xls", ".csv":
			out = append(out, e.Name())
		}
	}
	return out, nil
}

// FetchFile downloads one feed file into localDir and returns the local
// path. The remote file is left in place; the archive dedupes re-fetches.
func FetchFile(ctx context.Context, cfg Config, remoteFileName, localDir string) (string, error) {
	if cfg.RemoteDir == "" {
		cfg.RemoteDir = "/"
	}
	sshClient, cli, err := dial(ctx, cfg)
	if err != nil {
		return "", err
	}
	defer sshClient.Close()
	defer cli.Close()

	src, err := cli.Open(path.Join(cfg.RemoteDir, remoteFileName))
	if err != nil {
		return "", fmt.Errorf("sftp: open remote file: %w", err)
	}
	defer src.Close()

	localPath := filepath.Join(localDir, remoteFileName)
	dst, err := os.Create(localPath)
	if err != nil {
		return "", fmt.Errorf("sftp: create local file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("sftp: download copy: %w", err)
	}
	return localPath, nil
}
