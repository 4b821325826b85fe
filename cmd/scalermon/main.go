package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"scalermon/internal/config"
	"scalermon/internal/daemon"
	"scalermon/internal/database"
	"scalermon/internal/monitor"
	"scalermon/internal/reporter"
	"scalermon/internal/scaler"
	"scalermon/internal/shmem"
	"scalermon/internal/snapshot"
)

var (
	version = "0.1.0"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "start":
		startDaemon()
	case "watch":
		watchForeground()
	case "stop":
		stopDaemon()
	case "status":
		showStatus()
	case "snap":
		takeSnapshot()
	case "report":
		generateReport()
	case "clear":
		clearDatabase()
	case "version":
		fmt.Printf("scalermon version %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`scalermon - video scaler activity monitor

Usage:
  scalermon <command> [options]

Commands:
  start              Start the monitoring daemon
  watch              Run the monitor in the foreground, printing status lines
  stop               Stop the monitoring daemon
  status             Show daemon status and current scaler mode
  snap [file]        Save a PNG snapshot of the current frame
  report [period]    Generate change report (period: day, week, month)
  clear              Clear all recorded events from the database
  version            Show version information
  help               Show this help message

Examples:
  scalermon start
  scalermon watch
  scalermon status
  scalermon snap frame.png
  scalermon report day
  scalermon stop

Environment Variables:
  SCALERMON_BASE_ADDR              Physical base address (e.g. 0x20000000)
  SCALERMON_BUFFER_SIZE            Mapped region size in bytes
  SCALERMON_LAYOUT                 Header revision (v1, v2)
  SCALERMON_POLL_INTERVAL          Poll interval in milliseconds
  SCALERMON_SAMPLE_STEP            Sample grid step in pixels (1-64)
  SCALERMON_FINE_HISTOGRAM         Use 65536 color bins instead of 4096
  SCALERMON_DB_PATH                Database file path
  SCALERMON_PID_FILE               PID file path
  SCALERMON_SNAPSHOT_DIR           Snapshot output directory
  SCALERMON_SNAPSHOT_SCALE_WIDTH   Also write a copy scaled to this width

Reading scaler memory requires access to /dev/mem (usually root).

Version: %s
`, version)
}

// layoutFor resolves the configured hardware revision.
func layoutFor(cfg *config.Config) scaler.Layout {
	l, ok := scaler.Layouts()[cfg.Memory.Layout]
	if !ok {
		log.Fatalf("Unknown scaler layout %q (valid: v1, v2)", cfg.Memory.Layout)
	}
	return l
}

// openWindow maps the scaler region or exits non-zero, the fatal path
// for access errors.
func openWindow(cfg *config.Config) *shmem.Window {
	win, err := shmem.Open(cfg.Memory.BaseAddr, cfg.Memory.BufferSize)
	if err != nil {
		log.Fatalf("Cannot access scaler memory: %v", err)
	}
	return win
}

func startDaemon() {
	cfg := config.New()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Check if already running
	dm := daemon.New(cfg.Daemon.PIDFile)
	running, pid, err := dm.IsRunning()
	if err != nil {
		log.Fatalf("Failed to check daemon status: %v", err)
	}
	if running {
		log.Fatalf("Daemon is already running (PID: %d)", pid)
	}

	if os.Getenv("SCALERMON_DAEMON_CHILD") != "1" {
		// Parent process - re-exec detached and exit
		daemonize()
		return
	}

	// Child process - run the daemon
	runDaemon(cfg, dm)
}

// daemonize re-executes the binary with the child guard set and leaves
// it running detached.
func daemonize() {
	exe, err := os.Executable()
	if err != nil {
		log.Fatalf("Failed to locate executable: %v", err)
	}

	cmd := exec.Command(exe, "start")
	cmd.Env = append(os.Environ(), "SCALERMON_DAEMON_CHILD=1")
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		log.Fatalf("Failed to start daemon process: %v", err)
	}

	fmt.Printf("Daemon started (PID: %d)\n", cmd.Process.Pid)
}

func runDaemon(cfg *config.Config, dm *daemon.Daemon) {
	// Redirect logs to file
	logFile, err := os.OpenFile("/tmp/scalermon.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err == nil {
		log.SetOutput(logFile)
		defer logFile.Close()
	}

	// Initialize database
	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Initialize(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Map the scaler region
	win := openWindow(cfg)
	defer win.Close()

	// Write PID file
	if err := dm.WritePID(); err != nil {
		win.Close()
		log.Fatalf("Failed to write PID file: %v", err)
	}
	defer dm.RemovePID()

	repo := database.NewRepository(db)
	svc := monitor.NewService(cfg, win, layoutFor(cfg), repo)

	runService(cfg, svc, win, nil)
}

func watchForeground() {
	cfg := config.New()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	win := openWindow(cfg)
	defer win.Close()

	svc := monitor.NewService(cfg, win, layoutFor(cfg), nil)

	runService(cfg, svc, win, func(rec *monitor.StatusRecord) {
		fmt.Printf("\r%-80s", rec.Line())
	})
	fmt.Println()
}

// runService wires signals to the service and blocks until it exits.
// The window is closed on every path out, including signal-driven
// termination.
func runService(cfg *config.Config, svc *monitor.Service, win *shmem.Window, emit func(*monitor.StatusRecord)) {
	if emit != nil {
		svc.SetEmit(emit)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Received shutdown signal")
		cancel()
		svc.Stop()
	}()

	log.Println("Starting scalermon...")
	log.Printf("Configuration:\n%s", cfg.String())

	if err := svc.Start(ctx); err != nil && err != context.Canceled {
		win.Close()
		log.Fatalf("Monitor error: %v", err)
	}

	log.Println("Monitor stopped successfully")
}

func stopDaemon() {
	cfg := config.New()
	dm := daemon.New(cfg.Daemon.PIDFile)

	running, pid, err := dm.IsRunning()
	if err != nil {
		log.Fatalf("Failed to check daemon status: %v", err)
	}

	if !running {
		fmt.Println("Daemon is not running")
		return
	}

	fmt.Printf("Stopping daemon (PID: %d)...\n", pid)
	if err := dm.Stop(); err != nil {
		log.Fatalf("Failed to stop daemon: %v", err)
	}

	fmt.Println("Daemon stopped successfully")
}

func showStatus() {
	cfg := config.New()
	dm := daemon.New(cfg.Daemon.PIDFile)

	running, pid, err := dm.IsRunning()
	if err != nil {
		log.Fatalf("Failed to check daemon status: %v", err)
	}

	if !running {
		fmt.Println("Status: Not running")
	} else {
		fmt.Printf("Status: Running (PID: %d)\n", pid)
		fmt.Printf("Poll Interval: %v\n", cfg.Monitor.PollInterval)
		fmt.Printf("Database: %s\n", cfg.Database.Path)
	}

	// Show the current scaler mode even when the daemon is down
	win, err := shmem.Open(cfg.Memory.BaseAddr, cfg.Memory.BufferSize)
	if err != nil {
		fmt.Printf("\nCould not read scaler memory: %v\n", err)
		return
	}
	defer win.Close()

	layout := layoutFor(cfg)
	hdr, err := scaler.Parse(win, layout)
	if err != nil {
		fmt.Printf("\nCould not parse scaler header: %v\n", err)
		return
	}

	counter, _ := layout.Counter(win)
	fmt.Printf("\nCurrent Mode:\n")
	fmt.Printf("  Resolution: %s (output %dx%d)\n", hdr.Geometry(), hdr.OutW, hdr.OutH)
	fmt.Printf("  Format: %s (%d-bit, %s-endian)\n", hdr.Format, hdr.Format.BitDepth(), hdr.Order)
	fmt.Printf("  Stride: %d bytes\n", hdr.Stride)
	fmt.Printf("  Buffers: %d\n", len(hdr.BufferOffsets))
	fmt.Printf("  Frame Counter: %d\n", counter)
}

func takeSnapshot() {
	cfg := config.New()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	name := time.Now().Format("scaler-20060102-150405.png")
	if len(os.Args) > 2 && os.Args[2] != "" {
		name = os.Args[2]
	}

	win := openWindow(cfg)
	defer win.Close()

	img, err := snapshot.Grab(win, layoutFor(cfg))
	if err != nil {
		win.Close()
		log.Fatalf("Failed to grab frame: %v", err)
	}

	path, err := snapshot.WritePNG(img, cfg.Snapshot.Dir, name)
	if err != nil {
		win.Close()
		log.Fatalf("Failed to write snapshot: %v", err)
	}
	fmt.Printf("saved: %s\n", path)

	if cfg.Snapshot.ScaleWidth > 0 {
		scaled := snapshot.Scaled(img, cfg.Snapshot.ScaleWidth)
		path, err := snapshot.WritePNG(scaled, cfg.Snapshot.Dir, "small_"+name)
		if err != nil {
			win.Close()
			log.Fatalf("Failed to write scaled snapshot: %v", err)
		}
		fmt.Printf("saved: %s\n", path)
	}
}

func generateReport() {
	periodType := "day"
	if len(os.Args) > 2 {
		periodType = os.Args[2]
	}

	cfg := config.New()

	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	repo := database.NewRepository(db)
	rep := reporter.New(cfg, repo)

	jsonOutput := false
	if len(os.Args) > 3 && os.Args[3] == "--json" {
		jsonOutput = true
	}

	report, err := rep.GenerateReport(periodType)
	if err != nil {
		log.Fatalf("Failed to generate report: %v", err)
	}

	if jsonOutput {
		jsonStr, err := rep.FormatReportJSON(report)
		if err != nil {
			log.Fatalf("Failed to format JSON: %v", err)
		}
		fmt.Println(jsonStr)
	} else {
		fmt.Println(rep.FormatReportText(report))
	}
}

func clearDatabase() {
	cfg := config.New()

	fmt.Print("This will delete all recorded events. Are you sure? (yes/no): ")
	var response string
	fmt.Scanln(&response)

	if response != "yes" && response != "y" {
		fmt.Println("Operation cancelled")
		return
	}

	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	repo := database.NewRepository(db)

	if err := repo.Clear(); err != nil {
		log.Fatalf("Failed to clear database: %v", err)
	}

	fmt.Println("Database cleared successfully")
}
