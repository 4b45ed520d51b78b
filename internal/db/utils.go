package db

import (
	"fmt"
	"strconv"

	"github.com/dtnitsch/bbs-archive-parser/internal/common"
	dbpkg "github.com/dtnitsch/bbs-archive-parser/pkg/db"
	"github.com/urfave/cli/v2"
)

// OpenDatabase opens the SQLite archive named by the config or --sqlite.
func OpenDatabase(c *cli.Context) (*dbpkg.DB, error) {
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return nil, err
	}
	database, err := dbpkg.Open(cfg.SQLite)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return database, nil
}

// ReidArg returns the first positional argument as a reid.
func ReidArg(c *cli.Context) (int64, error) {
	if c.NArg() == 0 {
		return 0, fmt.Errorf("missing reid. Run 'bbs-archive-parser topics list' to see stored topics")
	}
	reid, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid reid: %s", c.Args().First())
	}
	return reid, nil
}
