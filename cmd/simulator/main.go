package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

var (
	listenAddr  = flag.String("listen", ":9100", "Address to serve the speech stream on")
	defaultConf = flag.Float64("confidence", 0.9, "Default slot confidence for spoken events")
	interactive = flag.Bool("interactive", true, "Enable interactive mode")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")
)

func main() {
	flag.Parse()

	// Setup logger
	var logger *zap.Logger
	var err error
	if *verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	sim := NewSimulator(&SimulatorConfig{
		ListenAddr:        *listenAddr,
		DefaultConfidence: *defaultConf,
	}, logger)

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down simulator...")
		sim.Stop()
		os.Exit(0)
	}()

	if err := sim.Start(); err != nil {
		logger.Fatal("Failed to start simulator", zap.Error(err))
	}

	if *interactive {
		runInteractiveMode(sim)
	} else {
		fmt.Printf("Speech engine simulator listening on %s\n", *listenAddr)
		fmt.Println("\nPress Ctrl+C to stop")
		select {}
	}
}

func runInteractiveMode(sim *Simulator) {
	fmt.Println("\nSpeech Engine Simulator - Interactive Mode")
	fmt.Println("==========================================")
	fmt.Println("Commands:")
	fmt.Println("  wake                          - Send a wake-word event")
	fmt.Println("  say <Action> [Slot=val[@c]]   - Send a recognition event")
	fmt.Println("  prefix <Action> [Slot=val]    - Send a prefixed one-shot event")
	fmt.Println("  conf <value>                  - Set default slot confidence")
	fmt.Println("  rules                         - Show rule toggles received")
	fmt.Println("  state                         - Show pause state and clients")
	fmt.Println("  quit                          - Exit simulator")
	fmt.Println("")
	fmt.Println("Example: say LightOn Target=\"kitchen lights\"@0.7")
	fmt.Println("")

	sim.RunInteractive()
}
