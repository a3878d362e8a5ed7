package main

import(
	"flag"
	"log"

	"github.com/abworrall/panoblend/pkg/blend"
	"github.com/abworrall/panoblend/pkg/panorama"
)

var(
	fVerbosity int
	fOutputFilename string
	fPreviewFilename string
	fPreviewWidth int
	fTonemapper string
	fStrategy string
	fWrap bool
	fLinear bool
	fFixedScale int
	fSkipBadTiles bool
	fDumpLevels bool
)

func init() {
	flag.IntVar(&fVerbosity, "v", 0, "how verbose to get")
	flag.StringVar(&fOutputFilename, "o", "", "output RGBE .hdr file (overrides config)")
	flag.StringVar(&fPreviewFilename, "preview", "", "tonemapped .png preview (overrides config)")
	flag.IntVar(&fPreviewWidth, "previewwidth", 0, "width of preview, in pixels (0 means full size)")
	flag.StringVar(&fTonemapper, "tonemapper", "", "how to tonemap the preview from HDR to LDR: "+panorama.ListTonemappers())

	flag.StringVar(&fStrategy, "strategy", "", "how to blend tiles: "+blend.ListStrategies())
	flag.BoolVar(&fWrap, "wrap", false, "panorama is a full 360, left edge meets right edge")
	flag.BoolVar(&fLinear, "linear", false, "blend linear radiance, rather than log radiance")
	flag.IntVar(&fFixedScale, "fixedscale", -1, "use this many pyramid reductions for every tile, rather than deriving it from each tile's size")
	flag.BoolVar(&fSkipBadTiles, "skipbad", false, "log and drop tiles that fail to load or blend")
	flag.BoolVar(&fDumpLevels, "dump", false, "write out the pyramid weight levels as PNGs")
	flag.Parse()

	log.Printf("panoblend starting\n")
}

func main() {
	p := panorama.NewPanorama()
	if err := p.LoadFilesAndDirs(flag.Args()...); err != nil {
		log.Fatal(err)
	}

	if fOutputFilename != ""  { p.Config.OutputFilename = fOutputFilename }
	if fPreviewFilename != "" { p.Config.PreviewFilename = fPreviewFilename }
	if fPreviewWidth > 0      { p.Config.PreviewWidth = fPreviewWidth }
	if fTonemapper != ""      { p.Config.Tonemapper = fTonemapper }
	if fStrategy != ""        { p.Config.Compositer.Strategy = fStrategy }
	if fWrap                  { p.Config.Compositer.WrapHorizontal = true }
	if fLinear                { p.Config.Compositer.LinearDomain = true }
	if fSkipBadTiles          { p.Config.SkipBadTiles = true }
	if fDumpLevels            { p.Config.Compositer.DumpLevels = true }
	if fFixedScale >= 0 {
		p.Config.Compositer.ScalePolicy = blend.ScaleFixed
		p.Config.Compositer.FixedScale = fFixedScale
	}
	if fVerbosity > p.Config.Verbosity {
		p.Config.Verbosity = fVerbosity
	}

	if p.Verbosity > 0 {
		log.Printf("Final configuration:-\n\n%s\n", p.Config.AsYaml())
	}

	if err := p.Build(); err != nil {
		log.Fatal(err)
	}
	if err := p.WriteOutputs(); err != nil {
		log.Fatal(err)
	}
	log.Printf("%s done\n", p)
}
