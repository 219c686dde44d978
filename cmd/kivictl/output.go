// Copyright 2025 The kivi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/viper"

	"github.com/gokivi/kivi"
)

// printResponse prints one key-space response: indented wire-shaped
// JSON under --json, a terse human form otherwise.
func printResponse(rsp *kivi.KeysResponse) error {
	if viper.GetBool("json") {
		b, err := json.MarshalIndent(rsp, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(b))
		return nil
	}

	switch rsp.Action {
	case "delete", "compareAndDelete", "expire":
		return nil
	}
	if rsp.Node == nil {
		return nil
	}
	if rsp.Node.Dir {
		printTree(rsp.Node)
		return nil
	}
	fmt.Println(rsp.Node.Value)
	return nil
}

// printTree lists a directory one entry per line, descending into
// whatever subtree the response carries.
func printTree(dir *kivi.Node) {
	for _, n := range dir.Nodes {
		if n.Dir {
			fmt.Println(n.Key + "/")
			printTree(n)
			continue
		}
		fmt.Printf("%s: %s\n", n.Key, n.Value)
	}
}
