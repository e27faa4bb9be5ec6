package chart

import (
	"os"
	"path/filepath"

	"golang.org/x/image/font/opentype"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"

	"github.com/kinolens/kinolens-cli/internal/logger"
)

// cjkTypeface is the typeface name registered for a discovered CJK font.
const cjkTypeface = "KinoLens-CJK"

// candidateFonts are probed in order. Movie names and keywords are
// Chinese; without one of these the default Liberation faces render
// such labels as blanks.
var candidateFonts = []string{
	"simhei.ttf",
	"msyh.ttc",
	"msyh.ttf",
	"simsun.ttc",
	"PingFang.ttc",
	"NotoSansCJK-Regular.ttc",
	"NotoSansCJKsc-Regular.otf",
	"SourceHanSansCN-Regular.otf",
	"SourceHanSansSC-Regular.otf",
}

// fontSearchDirs lists the platform font directories to probe.
func fontSearchDirs() []string {
	home, _ := os.UserHomeDir()
	windir := os.Getenv("WINDIR")
	if windir == "" {
		windir = `C:\Windows`
	}
	return []string{
		filepath.Join(windir, "Fonts"),
		"/System/Library/Fonts",
		"/Library/Fonts",
		filepath.Join(home, "Library", "Fonts"),
		"/usr/share/fonts",
		"/usr/share/fonts/opentype/noto",
		"/usr/share/fonts/truetype/noto",
		"/usr/local/share/fonts",
		filepath.Join(home, ".local", "share", "fonts"),
	}
}

// registerCJKFont searches the system font directories for a usable CJK
// face and installs it as the plot default. Returns false when none was
// found; charts still render, with CJK labels degraded.
func registerCJKFont() bool {
	for _, name := range candidateFonts {
		for _, dir := range fontSearchDirs() {
			path := filepath.Join(dir, name)
			raw, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			fnt, err := opentype.Parse(raw)
			if err != nil {
				// .ttc files need collection parsing; take the first face.
				coll, cerr := opentype.ParseCollection(raw)
				if cerr != nil || coll.NumFonts() == 0 {
					logger.Debug("unusable font %s: %v", path, err)
					continue
				}
				if fnt, err = coll.Font(0); err != nil {
					logger.Debug("unusable font collection %s: %v", path, err)
					continue
				}
			}

			font.DefaultCache.Add([]font.Face{{
				Font: font.Font{Typeface: cjkTypeface},
				Face: fnt,
			}})
			plot.DefaultFont = font.Font{Typeface: cjkTypeface}
			plotter.DefaultFont = font.Font{Typeface: cjkTypeface}

			logger.Info("using CJK font %s", path)
			return true
		}
	}
	return false
}
