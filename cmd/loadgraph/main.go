// loadgraph bootstraps the graph schema and loads the policy corpus: the
// extracted policy CSV, the tool-category workbook, and the administrative
// area-code workbook. Missing mapping workbooks are skipped with a warning so
// a partial corpus can still be loaded.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/haolun/policygraph-backend/internal/data/graph"
	"github.com/haolun/policygraph-backend/internal/ingestion"
	"github.com/haolun/policygraph-backend/internal/platform/logger"
	"github.com/haolun/policygraph-backend/internal/platform/neo4jdb"
)

func main() {
	var (
		csvPath   = flag.String("csv", "policy_data.csv", "extracted policy corpus CSV")
		toolsPath = flag.String("tools", "policy_tool.xlsx", "tool category mapping workbook")
		areasPath = flag.String("areas", "area_code.xlsx", "administrative area code workbook")
	)
	flag.Parse()

	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	client, err := neo4jdb.NewFromEnv(log)
	if err != nil {
		log.Fatal("graph store init failed", "error", err.Error())
	}
	defer client.Close(ctx)

	graph.EnsureSchema(ctx, client, log)

	loader := ingestion.NewLoader(log, client)

	f, err := os.Open(*csvPath)
	if err != nil {
		log.Fatal("open policy csv failed", "path", *csvPath, "error", err.Error())
	}
	ds, err := loader.ParsePolicyCSV(f)
	f.Close()
	if err != nil {
		log.Fatal("parse policy csv failed", "error", err.Error())
	}
	if err := loader.LoadDataset(ctx, ds); err != nil {
		log.Fatal("load policy dataset failed", "error", err.Error())
	}

	if categories, err := loader.ParseToolCategories(*toolsPath); err != nil {
		warnOrFatal(log, "tool category workbook", *toolsPath, err)
	} else if err := loader.LoadToolCategories(ctx, categories); err != nil {
		log.Fatal("load tool categories failed", "error", err.Error())
	}

	if attrs, parents, err := loader.ParseAreaCodes(*areasPath); err != nil {
		warnOrFatal(log, "area code workbook", *areasPath, err)
	} else if err := loader.LoadAreaCodes(ctx, attrs, parents); err != nil {
		log.Fatal("load area codes failed", "error", err.Error())
	}

	log.Info("graph load complete")
}

func warnOrFatal(log *logger.Logger, what, path string, err error) {
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn(what+" not found, skipping", "path", path)
		return
	}
	log.Fatal(what+" failed", "path", path, "error", err.Error())
}
