// Copyright 2025 The kivi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/gokivi/kivi"
)

var (
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Read the node at a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := kivi.NewGetRequest(args[0])
			if viper.GetBool("recursive") {
				req.Recursive()
			}
			if viper.GetBool("sorted") {
				req.Sorted()
			}
			if viper.GetBool("quorum") {
				req.Quorum()
			}
			rsp, err := send(context.Background(), req)
			if err != nil {
				return err
			}
			return printResponse(rsp)
		},
	}

	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Set the node at a key",
		Long: `Set writes a value to a key, creating the node if it does not
exist. With --dir it creates a directory instead and takes no value.
The --prev-value, --prev-index and --prev-exist flags make the write
conditional (compare-and-swap).`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := viper.GetBool("dir")
			if dir && len(args) > 1 {
				return errors.New("a directory takes no value")
			}
			if !dir && len(args) < 2 {
				return errors.New("set needs a key and a value")
			}
			value := ""
			if len(args) > 1 {
				value = args[1]
			}
			req := kivi.NewSetRequest(args[0], value)
			if dir {
				req.Dir()
			}
			if d := viper.GetDuration("ttl"); d > 0 {
				req.TTL(d)
			}
			if cmd.Flags().Changed("prev-value") {
				req.PrevValue(viper.GetString("prev-value"))
			}
			if i := viper.GetUint64("prev-index"); i > 0 {
				req.PrevIndex(i)
			}
			if cmd.Flags().Changed("prev-exist") {
				req.PrevExist(viper.GetBool("prev-exist"))
			}
			rsp, err := send(context.Background(), req)
			if err != nil {
				return err
			}
			return printResponse(rsp)
		},
	}

	mkCmd = &cobra.Command{
		Use:   "mk [dir] [value]",
		Short: "Append an in-order node under a directory",
		Long: `Mk creates a node with a server-assigned, monotonically increasing
key under the given directory. Use it to build queues whose entries
sort in creation order.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := kivi.NewCreateRequest(args[0], args[1])
			if d := viper.GetDuration("ttl"); d > 0 {
				req.TTL(d)
			}
			rsp, err := send(context.Background(), req)
			if err != nil {
				return err
			}
			return printResponse(rsp)
		},
	}

	rmCmd = &cobra.Command{
		Use:   "rm [key]",
		Short: "Delete the node at a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := kivi.NewDeleteRequest(args[0])
			if viper.GetBool("recursive") {
				req.Recursive()
			}
			if viper.GetBool("dir") {
				req.Dir()
			}
			if cmd.Flags().Changed("prev-value") {
				req.PrevValue(viper.GetString("prev-value"))
			}
			if i := viper.GetUint64("prev-index"); i > 0 {
				req.PrevIndex(i)
			}
			rsp, err := send(context.Background(), req)
			if err != nil {
				return err
			}
			return printResponse(rsp)
		},
	}

	watchCmd = &cobra.Command{
		Use:   "watch [key]...",
		Short: "Block until the given keys change",
		Long: `Watch blocks until each named key changes and prints the change.
With --forever it keeps watching, resuming after every change from the
index that change happened at. Interrupt to stop.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, ctx := errgroup.WithContext(ctx)
			for _, key := range args {
				key := key
				g.Go(func() error {
					return watchKey(ctx, key)
				})
			}
			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the server version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := client.Version(context.Background())
			if err != nil {
				return err
			}
			fmt.Println(v)
			return nil
		},
	}
)

func init() {
	getCmd.Flags().Bool("recursive", false, "list the whole subtree below the key")
	getCmd.Flags().Bool("sorted", false, "sort directory listings by key")
	getCmd.Flags().Bool("quorum", false, "read through the leader (linearizable)")

	setCmd.Flags().Duration("ttl", 0, "node lifetime before the server expires it")
	setCmd.Flags().Bool("dir", false, "create a directory instead of a value node")
	setCmd.Flags().String("prev-value", "", "write only if the current value matches")
	setCmd.Flags().Uint64("prev-index", 0, "write only if the current modified index matches")
	setCmd.Flags().Bool("prev-exist", false, "write only if the node already exists (or, with =false, does not)")

	mkCmd.Flags().Duration("ttl", 0, "node lifetime before the server expires it")

	rmCmd.Flags().Bool("recursive", false, "delete the whole subtree below the key")
	rmCmd.Flags().Bool("dir", false, "delete an empty directory")
	rmCmd.Flags().String("prev-value", "", "delete only if the current value matches")
	rmCmd.Flags().Uint64("prev-index", 0, "delete only if the current modified index matches")

	watchCmd.Flags().Uint64("index", 0, "watch from this cluster index instead of the next change")
	watchCmd.Flags().Bool("forever", false, "keep watching after the first change")
}

// send dispatches req on the shared client and waits out its future.
func send(ctx context.Context, req *kivi.KeysRequest) (*kivi.KeysResponse, error) {
	if _, err := client.Send(req); err != nil {
		return nil, err
	}
	return req.Future().Result(ctx)
}

// watchKey watches one key until the context is cancelled or, without
// --forever, until the first change.
func watchKey(ctx context.Context, key string) error {
	index := viper.GetUint64("index")
	for {
		rsp, err := client.Watch(ctx, key, index)
		if err != nil {
			return err
		}
		if err := printResponse(rsp); err != nil {
			return err
		}
		if !viper.GetBool("forever") {
			return nil
		}
		if rsp.Node != nil {
			index = rsp.Node.ModifiedIndex + 1
		}
	}
}
