// savetool signs, verifies and inspects exported save files.
//
// Usage:
//
//	go run ./cmd/savetool <command> [-key hex-or-text] [-mac tag] <file>
//
// Commands: sign, verify, inspect
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/gloomspire/server/internal/save"
)

func main() {
	key := flag.String("key", "", "MAC key (required for sign and verify)")
	mac := flag.String("mac", "", "expected tag (verify)")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) != 2 {
		usage()
		os.Exit(2)
	}
	cmd, path := args[0], args[1]

	raw, err := os.ReadFile(path)
	if err != nil {
		fail("read %s: %v", path, err)
	}

	switch cmd {
	case "sign":
		if *key == "" {
			fail("sign requires -key")
		}
		tag, err := save.Sign(raw, []byte(*key))
		if err != nil {
			fail("sign: %v", err)
		}
		fmt.Println(tag)
	case "verify":
		if *key == "" || *mac == "" {
			fail("verify requires -key and -mac")
		}
		if !save.Verify(raw, []byte(*key), *mac) {
			fail("MAC mismatch")
		}
		fmt.Println("ok")
	case "inspect":
		sd, err := save.Parse(raw)
		if err != nil {
			fail("parse: %v", err)
		}
		out, err := json.MarshalIndent(sd, "", "  ")
		if err != nil {
			fail("render: %v", err)
		}
		fmt.Println(string(out))
		fmt.Fprintf(os.Stderr, "note: inspect does not validate against a catalog\n")
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: savetool <sign|verify|inspect> [-key k] [-mac tag] <file>")
	flag.PrintDefaults()
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
