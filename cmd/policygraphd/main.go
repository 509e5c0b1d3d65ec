package main

import (
	"context"
	"fmt"
	"os"

	"github.com/haolun/policygraph-backend/internal/app"
)

func main() {
	ctx := context.Background()

	a, err := app.New(ctx)
	if err != nil {
		fmt.Printf("Failed to start: %v\n", err)
		os.Exit(1)
	}
	defer a.Close(ctx)

	if err := a.Run(); err != nil {
		a.Log.Error("server stopped", "error", err.Error())
		a.Close(ctx)
		os.Exit(1)
	}
}
