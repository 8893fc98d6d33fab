package main

import (
	"context"
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/lookbusy1344/riscv-vm/api"
	"github.com/lookbusy1344/riscv-vm/config"
	"github.com/lookbusy1344/riscv-vm/loader"
	"github.com/lookbusy1344/riscv-vm/service"
	"github.com/lookbusy1344/riscv-vm/vm"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
)

// identityDemo is ARM64 machine code for a function that returns its
// single 32-bit argument, used when no code file is given:
//
//	sub  sp, sp, #16
//	str  w0, [sp, #12]
//	ldr  w0, [sp, #12]
//	add  sp, sp, #16
//	ret
var identityDemo = []uint32{0xd10043ff, 0xb9000fe0, 0xb9400fe0, 0x910043ff, 0xd65f03c0}

func main() {
	// Load .env before anything reads the environment; a missing file is
	// fine
	_ = godotenv.Load()

	var (
		showVersion = flag.Bool("version", false, "Show version information")
		configPath  = flag.String("config", "", "Config file path (default: platform config dir)")
		apiServer   = flag.Bool("api-server", false, "Start HTTP API server mode")
		codeFile    = flag.String("code", "", "Native code file to install (.bin)")
		imageFile   = flag.String("image", "", "Guest RISC-V image to validate/disassemble (.bin or .hex)")
		disasm      = flag.Bool("disasm", false, "Disassemble the guest image and exit")
		entryPC     = flag.Uint("pc", 0, "Entry offset into the code arena")
		callArg     = flag.Uint("arg", 42, "32-bit argument for the call")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("riscv-vm %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	log.SetPrefix(cfg.Log.Prefix)
	if !cfg.Log.Timestamps {
		log.SetFlags(0)
	}

	vmConfig := vm.Config{
		Syscall:           loggingSyscall,
		MaxInstanceMemory: cfg.VM.MaxInstanceMemory,
		MaxCodeSize:       cfg.VM.MaxCodeSize,
	}

	if *disasm || *imageFile != "" {
		if err := runImage(vmConfig, *imageFile, *disasm); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *apiServer {
		runAPIServer(cfg, vmConfig)
		return
	}

	if err := runDemo(vmConfig, cfg.VM.DefaultGas, *codeFile, uint32(*entryPC), uint32(*callArg)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loggingSyscall is the demo syscall handler: it logs the argument
// window and returns zero.
func loggingSyscall(args []uint32, context uint64) uint32 {
	log.Printf("syscall: %v, %v", args, context)
	return 0
}

// runDemo installs native code (the identity function by default) and
// performs one call.
func runDemo(vmConfig vm.Config, gas uint64, codeFile string, pc, arg uint32) error {
	var code []byte
	if codeFile != "" {
		var err error
		code, err = os.ReadFile(codeFile)
		if err != nil {
			return fmt.Errorf("reading code file: %w", err)
		}
	} else {
		for _, w := range identityDemo {
			code = binary.LittleEndian.AppendUint32(code, w)
		}
	}

	engine := vm.NewEngine(vmConfig)

	module, err := vm.NewModule(engine)
	if err != nil {
		return err
	}
	defer module.Close()
	module.SetGas(gas)

	instance, err := vm.NewInstance(module, vm.NewMemory(engine))
	if err != nil {
		return err
	}

	if err := module.SetNativeCode(code); err != nil {
		return err
	}

	output, err := instance.Call(pc, arg)
	if err != nil {
		return err
	}

	log.Printf("output: %d", output)
	return nil
}

// runImage loads a guest RISC-V image, validates it against the
// supported subset and optionally prints its disassembly.
func runImage(vmConfig vm.Config, path string, disasm bool) error {
	if path == "" {
		return fmt.Errorf("-disasm requires -image")
	}

	img, err := loader.LoadImage(path)
	if err != nil {
		return err
	}

	if disasm {
		img.Disassemble(os.Stdout)
		return nil
	}

	if len(img.Bytes) > vmConfig.MaxCodeSize {
		return vm.ErrInvalidCodeSize
	}
	if err := img.Validate(); err != nil {
		return fmt.Errorf("%w: %v", vm.ErrInvalidInstruction, err)
	}

	log.Printf("image %s: %d instructions, all supported", path, len(img.Words()))
	return nil
}

// runAPIServer starts the HTTP API with signal-driven graceful shutdown.
func runAPIServer(cfg *config.Config, vmConfig vm.Config) {
	runner := service.NewRunner(vmConfig, cfg.VM.DefaultGas)
	server := api.NewServer(cfg.Server.Listen, runner,
		time.Duration(cfg.Server.SessionIdleSecs)*time.Second)
	server.SetVersion(Version)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down API server...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
			os.Exit(1)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
