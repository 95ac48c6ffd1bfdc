// Package main implements the nesgo NES emulator executable.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nesgo/internal/config"
	"nesgo/internal/graphics"
	"nesgo/internal/nes"
)

const version = "0.1.0"

func main() {
	var (
		romFile    = flag.String("rom", "", "Path to NES ROM file")
		configFile = flag.String("config", "", "Path to configuration file")
		debug      = flag.Bool("debug", false, "Enable debug logging")
		nogui      = flag.Bool("nogui", false, "Run without a display (headless mode)")
		backendFlag = flag.String("backend", "", "Graphics backend: ebitengine, sdl, tui, headless (overrides config)")
		help       = flag.Bool("help", false, "Show help message")
		showVer    = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *help {
		printUsage()
		os.Exit(0)
	}
	if *showVer {
		fmt.Printf("nesgo %s\n", version)
		os.Exit(0)
	}

	setupGracefulShutdown()

	configPath := *configFile
	if configPath == "" {
		configPath = defaultConfigPath()
	}
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		log.Fatalf("nesgo: failed to load configuration: %v", err)
	}

	if *debug {
		cfg.Debug.EnableLogging = true
		cfg.Debug.LogLevel = "debug"
	}
	if *nogui {
		cfg.Video.Backend = "headless"
	}
	if *backendFlag != "" {
		cfg.Video.Backend = *backendFlag
	}

	emu := nes.New()
	if *romFile != "" {
		data, err := os.ReadFile(*romFile)
		if err != nil {
			log.Fatalf("nesgo: failed to read ROM %s: %v", *romFile, err)
		}
		if !emu.LoadROM(data) {
			log.Fatalf("nesgo: failed to load ROM %s: unrecognized or corrupt iNES image", *romFile)
		}
		if cfg.Debug.EnableLogging {
			log.Printf("nesgo: loaded ROM %s", *romFile)
		}
	} else if cfg.Video.Backend == "headless" {
		log.Fatal("nesgo: -rom is required in headless mode")
	}

	emu.SetAudioSampleRate(cfg.Audio.SampleRate)

	backend := graphics.CreateBackend(graphics.BackendKind(cfg.Video.Backend))
	if err := backend.Open(graphics.Config{
		Title:      "nesgo",
		Scale:      cfg.Window.Scale,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Video.VSync,
		SampleRate: cfg.Audio.SampleRate,
		Volume:     cfg.Audio.Volume,
	}); err != nil {
		log.Fatalf("nesgo: failed to open graphics backend %q: %v", backend.Name(), err)
	}
	defer backend.Close()

	run(emu, backend, cfg)
}

// run drives the emulator one frame at a time: push button state in from
// the backend, run a frame, then push video and audio out, until the
// backend or the user requests a quit.
func run(emu *nes.Emulator, backend graphics.Backend, cfg *config.Config) {
	frames := 0
	start := time.Now()

	for !backend.ShouldQuit() {
		for port := 0; port < 2; port++ {
			buttons := backend.PollButtons(port)
			for i, pressed := range buttons {
				emu.SetButton(port, i, pressed)
			}
		}

		emu.RunFrame()

		if err := backend.PresentFrame(emu.FrameBuffer()); err != nil {
			log.Printf("nesgo: present frame: %v", err)
		}
		if cfg.Audio.Enabled {
			if err := backend.QueueSamples(emu.AudioSamples()); err != nil {
				log.Printf("nesgo: queue audio: %v", err)
			}
		}

		frames++
	}

	if cfg.Debug.EnableLogging {
		elapsed := time.Since(start)
		log.Printf("nesgo: rendered %d frames in %v (%.1f fps)", frames, elapsed, float64(frames)/elapsed.Seconds())
	}
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "nesgo.json"
	}
	return dir + "/nesgo/config.json"
}

func setupGracefulShutdown() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		fmt.Println("\nnesgo: interrupt received, shutting down")
		os.Exit(0)
	}()
}

func printUsage() {
	fmt.Println("nesgo - a Go NES emulator")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  nesgo [options]                      start with no ROM loaded")
	fmt.Println("  nesgo -rom <file> [options]          start with a ROM loaded")
	fmt.Println("  nesgo -nogui -rom <file> [options]   run headless")
	fmt.Println()
	fmt.Println("OPTIONS:")
	flag.PrintDefaults()
}
