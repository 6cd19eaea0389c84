package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"cubeinspector/internal/models"
	"cubeinspector/pkg/config"
	"cubeinspector/pkg/cubeio"
	"cubeinspector/pkg/inspector"
	"cubeinspector/pkg/logger"
	"cubeinspector/pkg/visualization"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "cubeinspector.yaml", "YAML configuration file, re-read on reset")
	initConfig := flag.Bool("init-config", false, "Write a default configuration file and exit")
	orgDir := flag.String("org", "", "Directory of band images for the original cube")
	lutDir := flag.String("lut", "", "Directory of band images for the LUT-corrected cube")
	intrDir := flag.String("intr", "", "Directory of band images for the interpolation-corrected cube")
	synthetic := flag.Bool("synthetic", false, "Generate synthetic cubes instead of loading band images")
	saveSynthetic := flag.String("save-synthetic", "", "Write the generated synthetic cubes as band stacks under this directory")
	outDir := flag.String("out", "", "Directory for panel images (overrides display.outputDir)")
	scriptPath := flag.String("script", "", "File of input lines to replay (default: read stdin)")
	level := flag.String("level", "", "Log level: debug, info or error (overrides logging.level)")
	slicesAxis := flag.String("slices", "", "Export every slice of each cube along band, row or col and exit")
	flag.Parse()

	if *initConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Default configuration written to: %s\n", *configPath)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *outDir != "" {
		cfg.Display.OutputDir = *outDir
	}
	if *level != "" {
		cfg.Logging.Level = *level
	}
	lg := logger.NewStdErrLogger(logger.ParseLogLevel(cfg.Logging.Level))

	startTime := time.Now()
	cubes, err := loadCubes(cfg, *synthetic, *orgDir, *lutDir, *intrDir)
	if err != nil {
		log.Fatalf("Failed to load cubes: %v", err)
	}
	lg.Infof("Loaded %d cube(s) in %.2f seconds", countCubes(cubes), time.Since(startTime).Seconds())

	if *synthetic && *saveSynthetic != "" {
		names := []string{"org", "lut", "intr"}
		for i, cube := range cubes {
			dir := filepath.Join(*saveSynthetic, names[i])
			if err := cubeio.SaveBandStack(cube, dir); err != nil {
				log.Fatalf("Failed to save synthetic cube: %v", err)
			}
			lg.Infof("Saved %s band stack to: %s", names[i], dir)
		}
	}

	if *slicesAxis != "" {
		exportSlices(cubes, *slicesAxis, filepath.Join(cfg.Display.OutputDir, "slices"), lg)
		return
	}

	surface, err := visualization.NewFileSurface(visualization.SurfaceOptions{
		Dir:        cfg.Display.OutputDir,
		Format:     cfg.Display.Format,
		Quality:    cfg.Display.Quality,
		Scale:      cfg.Display.Scale,
		PlotWidth:  cfg.Display.PlotWidth,
		PlotHeight: cfg.Display.PlotHeight,
		Out:        os.Stdout,
	})
	if err != nil {
		log.Fatalf("Failed to create display: %v", err)
	}

	insp, err := inspector.New(cubes, &inspector.Params{
		Surface:     surface,
		Settings:    config.NewSource(*configPath),
		Logger:      lg,
		UseRadians:  cfg.Inspector.UseRadians,
		UseCentered: cfg.Inspector.UseCentered,
	})
	if err != nil {
		log.Fatalf("Failed to create inspector: %v", err)
	}

	insp.Show()
	lg.Infof("Panels written to: %s", cfg.Display.OutputDir)

	var input io.Reader = os.Stdin
	if *scriptPath != "" {
		file, err := os.Open(*scriptPath)
		if err != nil {
			log.Fatalf("Failed to open script: %v", err)
		}
		defer file.Close()
		input = file
	} else {
		fmt.Println("Reading input from stdin: key <k> | click <panel> <x> [<y>] [shift|alt]")
	}

	n, err := visualization.RunScript(input, insp.Dispatch, lg)
	if err != nil {
		lg.Errorf("%v", err)
	}
	lg.Infof("Replayed %d input(s)", n)
}

// loadCubes returns the original cube followed by the corrected ones; a missing
// corrected cube stays nil and is skipped by the inspector
func loadCubes(cfg *config.Config, synthetic bool, dirs ...string) ([]*models.Cube, error) {
	if synthetic {
		return cubeio.SyntheticStack(cubeio.SyntheticParams{
			Rows:  cfg.Synthetic.Rows,
			Cols:  cfg.Synthetic.Cols,
			Bands: cfg.Synthetic.Bands,
			Smile: cfg.Synthetic.Smile,
			Noise: cfg.Synthetic.Noise,
			Seed:  cfg.Synthetic.Seed,
		})
	}

	if dirs[0] == "" {
		return nil, fmt.Errorf("either -org or -synthetic is required")
	}
	cubes := make([]*models.Cube, len(dirs))
	for i, dir := range dirs {
		if dir == "" {
			continue
		}
		cube, err := cubeio.LoadBandStack(dir)
		if err != nil {
			return nil, err
		}
		cubes[i] = cube
	}
	return cubes, nil
}

func countCubes(cubes []*models.Cube) int {
	n := 0
	for _, c := range cubes {
		if c != nil {
			n++
		}
	}
	return n
}

func exportSlices(cubes []*models.Cube, axis, dir string, lg logger.ILogger) {
	names := []string{"org", "lut", "intr"}
	for i, cube := range cubes {
		if cube == nil {
			continue
		}
		viewer := visualization.NewViewer(cube)
		cubeDir := filepath.Join(dir, names[i], axis)
		lg.Infof("Saving %s %s slices to: %s", names[i], axis, cubeDir)

		if err := viewer.SaveSliceSequence(axis, cubeDir); err != nil {
			lg.Errorf("Failed to save %s slices: %v", names[i], err)
		}
	}
}
