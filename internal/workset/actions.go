package workset

import (
	"fmt"

	"github.com/dtnitsch/bbs-archive-parser/internal/common"
	"github.com/dtnitsch/bbs-archive-parser/pkg/workset"
	"github.com/urfave/cli/v2"
)

func open(c *cli.Context) (*workset.Store, string, error) {
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return nil, "", err
	}
	if cfg.Redis == "" {
		return nil, "", fmt.Errorf("no redis address configured (set redis in config.yml or --redis)")
	}
	store, err := workset.Open(cfg.Redis)
	if err != nil {
		return nil, "", err
	}
	return store, workset.Key(c.String("board"), c.String("name")), nil
}

func ListAction(c *cli.Context) error {
	store, key, err := open(c)
	if err != nil {
		return err
	}
	defer store.Close()

	reids, err := store.Members(c.Context, key)
	if err != nil {
		return err
	}
	for _, r := range reids {
		fmt.Println(r)
	}
	fmt.Printf("\nTotal: %d reids in %s\n", len(reids), key)
	return nil
}

// AddAction adds the reids given with --poi to the workset.
func AddAction(c *cli.Context) error {
	reids, err := common.ParseReidList(c.String("poi"))
	if err != nil {
		return err
	}
	if len(reids) == 0 {
		return fmt.Errorf("no reids given; use --poi")
	}

	store, key, err := open(c)
	if err != nil {
		return err
	}
	defer store.Close()

	if c.Bool("reset") {
		if err := store.Reset(c.Context, key); err != nil {
			return err
		}
	}
	added, err := store.Add(c.Context, key, reids...)
	if err != nil {
		return err
	}
	fmt.Printf("Added %d new reids to %s\n", added, key)
	return nil
}

func RemoveAction(c *cli.Context) error {
	reids, err := common.ParseReidList(c.String("poi"))
	if err != nil {
		return err
	}

	store, key, err := open(c)
	if err != nil {
		return err
	}
	defer store.Close()

	removed, err := store.Remove(c.Context, key, reids...)
	if err != nil {
		return err
	}
	fmt.Printf("Removed %d reids from %s\n", removed, key)
	return nil
}

func ResetAction(c *cli.Context) error {
	store, key, err := open(c)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Reset(c.Context, key); err != nil {
		return err
	}
	fmt.Printf("Cleared %s\n", key)
	return nil
}
