// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the fuzzy word search server and CLI [DBG] application.

WordScan finds the words of a word list that best match a query, even when
the query is misspelled. Every search is a full pass over a compact binary
word list, scoring each word by prefix agreement, edit distance and Soundex
code. Results come in two groups: strong matches (exact and prefix hits) and
approximate matches (typos and sound-alikes), each capped and ranked by score.

Searches run on a background worker. A new query replaces the one being
scanned, so a client can search on every keystroke and only ever receive
results for what was typed last.

# Usage

Start the server with default settings:

	wordscan

Use a custom word list and enable debug mode:

	wordscan -dict /path/to/words.bin -d

Run in CLI mode for interactive testing:

	wordscan -c

Build a word list from a plain text file, one word per line:

	wordscan -build words.txt -out words.bin

# Word lists

A word list is a sequence of records. Each record is a length byte L
followed by L bytes: the word, then a NUL terminator. Records with L = 0 are
skipped, and a truncated final record ends the scan.

# Configuration

Runtime configuration is read from a TOML file, created with defaults if it
doesn't exist:

	[search]
	dict_file = "words.bin"
	max_results = 10
	max_edit_distance = 5

	[server]
	max_query_len = 60

	[cli]
	color = true

# IPC Protocol

The server communicates via MessagePack over stdin/stdout.

	{"id": "req1", "a": "search", "q": "recieve"}
	{"id": "req1", "q": "recieve", "s": [], "x": ["receive"], "c": 1, "t": 812}

See package server for the full protocol.

# Command Line Flags

	-dict string
	    Word list to search (default from config)
	-config string
	    Path to a custom config file
	-d  Enable debug mode with detailed logging
	-c  Run CLI mode instead of server mode
	-build string
	    Plain text word file to convert into a word list
	-out string
	    Output path for -build (default "words.bin")
	-version
	    Show current version
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/wordscan/internal/cli"
	"github.com/bastiangx/wordscan/internal/logger"
	"github.com/bastiangx/wordscan/internal/utils"
	"github.com/bastiangx/wordscan/pkg/config"
	"github.com/bastiangx/wordscan/pkg/dictionary"
	"github.com/bastiangx/wordscan/pkg/server"
	"github.com/bastiangx/wordscan/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.1.0-beta"
	AppName = "wordscan"
	gh      = "https://github.com/bastiangx/wordscan"
)

// sigHandler stops the engine on OS signals and exits normally.
func sigHandler(engine *suggest.Engine) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		if err := engine.Close(); err != nil {
			log.Errorf("Closing word list: %v", err)
		}
		os.Exit(0)
	}()
}

// main calls other packages to initialize the server or CLI inputs.
// main() does not implement logic for them and only manages the flow.
func main() {
	showVersion := flag.Bool("version", false, "Show current version")
	dictFile := flag.String("dict", "", "Word list to search (default from config)")
	configFile := flag.String("config", "", "Path to a custom config file")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	buildSrc := flag.String("build", "", "Plain text word file to convert into a word list")
	buildOut := flag.String("out", "words.bin", "Output path for -build")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *debugMode {
		logger.SetupGlobal(log.DebugLevel, true)
	} else {
		logger.SetupGlobal(log.WarnLevel, false)
	}

	if *buildSrc != "" {
		n, err := dictionary.BuildFile(*buildSrc, *buildOut)
		if err != nil {
			log.Fatalf("Failed to build word list: %v", err)
		}
		log.Printf("Wrote %d words to %s", n, *buildOut)
		return
	}

	pathResolver, err := utils.NewPathResolver()
	if err != nil {
		log.Print("Either env is not set or system is not supported")
		log.Fatalf("Failed to initialize path resolver: %v", err)
	}

	// An existing config in the resolver's platform dir wins over the default location.
	configPath := *configFile
	if configPath == "" {
		if p, err := pathResolver.GetConfigPath("config.toml"); err == nil && utils.FileExists(p) {
			configPath = p
		}
	}
	appConfig, activePath, err := config.LoadConfigWithPriority(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(activePath))

	name := appConfig.Search.DictFile
	if *dictFile != "" {
		name = *dictFile
	}
	wordList := pathResolver.ResolveWordList(name)
	if format, err := dictionary.DetectFileFormat(wordList); err == nil && format == dictionary.FormatText {
		log.Warnf("%s looks like plain text, convert it with -build first", wordList)
	}

	engine := suggest.New(wordList,
		suggest.WithMaxResults(appConfig.Search.MaxResults),
		suggest.WithMaxEditDistance(appConfig.Search.MaxEditDistance),
	)
	defer engine.Close()
	sigHandler(engine)

	if err := engine.Err(); err != nil {
		log.Errorf("Word list unavailable, searches will fail: %v", err)
	}

	// CLI would be mainly used for testing and dbg purposes.
	if *cliMode {
		log.SetReportTimestamp(false)
		inputHandler := cli.NewInputHandler(engine, appConfig)
		if err := inputHandler.Start(); err != nil {
			log.Errorf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(engine, appConfig)

	showStartupInfo(wordList)

	if err := srv.Start(); err != nil {
		log.Errorf("Server stopped: %v", err)
	}
}

// printVersion prints the version banner.
func printVersion() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ WordScan ] Finds the words you meant to type")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available options")
	logger.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
// Everything goes to stderr, stdout belongs to the IPC stream.
func showStartupInfo(wordList string) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	println("===========")
	println(" WordScan  ")
	println("===========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("word list: ( %s )", wordList)
	log.Info("status: ready")
	println("===========")
	println("Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
