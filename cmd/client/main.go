// Package main implements a small command-line client for the secretdrop
// API: create, reveal, list, and delete secrets from the shell.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
)

var (
	version   string
	buildDate string
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: secretdrop-client [flags] <command> [args]

Commands:
  create <text>   create a secret, print its id and expiry
  reveal <id>     reveal a secret
  list            list your secrets (requires -token)
  delete <id>     delete one of your secrets (requires -token)

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	server := flag.String("s", "http://localhost:8080", "server base URL")
	token := flag.String("token", "", "bearer session token")
	password := flag.String("p", "", "secret password (create or reveal)")
	oneTime := flag.Bool("one-time", false, "destroy the secret after its first reveal")
	expiresIn := flag.Int64("expires-in", 3600, "lifetime in seconds")
	search := flag.String("search", "", "filter listed secrets by id substring")
	flag.Usage = usage
	flag.Parse()

	if version != "" {
		log.Printf("secretdrop-client %s (%s)", version, buildDate)
	}

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	var err error
	switch args[0] {
	case "create":
		if len(args) < 2 {
			err = fmt.Errorf("usage: create <text>")
			break
		}
		err = call(*server, *token, "POST", "/api/secrets", map[string]any{
			"text":      args[1],
			"oneTime":   *oneTime,
			"expiresIn": *expiresIn,
			"password":  *password,
		})
	case "reveal":
		if len(args) < 2 {
			err = fmt.Errorf("usage: reveal <id>")
			break
		}
		body := map[string]any{}
		if *password != "" {
			body["password"] = *password
		}
		err = call(*server, *token, "POST", "/api/secrets/"+url.PathEscape(args[1])+"/reveal", body)
	case "list":
		path := "/api/secrets"
		if *search != "" {
			path += "?search=" + url.QueryEscape(*search)
		}
		err = call(*server, *token, "GET", path, nil)
	case "delete":
		if len(args) < 2 {
			err = fmt.Errorf("usage: delete <id>")
			break
		}
		err = call(*server, *token, "DELETE", "/api/secrets/"+url.PathEscape(args[1]), nil)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

// call performs one API request and prints the response body to stdout.
func call(server, token, method, path string, body map[string]any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, server+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("server returned %s: %s", resp.Status, bytes.TrimSpace(out))
	}
	fmt.Printf("%s", out)
	return nil
}
