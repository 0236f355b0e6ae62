package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/houseofbtc/houseledger/pkg/wallet"
	log "github.com/sirupsen/logrus"
)

const seedFile = "seed"

// loadOrCreateMnemonic returns the configured mnemonic if any, otherwise the
// one stored in the datadir. If neither exists a new one is generated and
// stored so that the wallet survives restarts.
func loadOrCreateMnemonic(datadir string, configured []string) ([]string, error) {
	if len(configured) > 0 {
		return configured, nil
	}

	path := filepath.Join(datadir, seedFile)
	buf, err := os.ReadFile(path)
	if err == nil {
		mnemonic := strings.Fields(string(buf))
		if !wallet.IsMnemonicValid(mnemonic) {
			return nil, fmt.Errorf("invalid mnemonic in %s", path)
		}
		return mnemonic, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	mnemonic, err := wallet.NewMnemonic(wallet.NewMnemonicOpts{
		EntropySize: wallet.DefaultEntropySize,
	})
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(
		path, []byte(strings.Join(mnemonic, " ")), 0600,
	); err != nil {
		return nil, err
	}

	log.Warnf("generated a new wallet seed, stored in %s", path)
	return mnemonic, nil
}
