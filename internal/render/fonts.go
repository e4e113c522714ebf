package render

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontSet holds the parsed typefaces for the three font choices and hands
// out sized faces. Faces are cached per (choice, size).
type FontSet struct {
	fonts [3]*opentype.Font

	mu    sync.Mutex
	faces map[faceKey]font.Face
}

type faceKey struct {
	choice FontChoice
	size   float64
}

// LoadFonts builds a FontSet. Each path may be empty, in which case the
// embedded Go typeface for that slot is used (A: regular, B: bold, C: mono).
func LoadFonts(pathA, pathB, pathC string) (*FontSet, error) {
	defaults := [3][]byte{goregular.TTF, gobold.TTF, gomono.TTF}
	paths := [3]string{pathA, pathB, pathC}

	fs := &FontSet{faces: make(map[faceKey]font.Face)}
	for i, path := range paths {
		data := defaults[i]
		if path != "" {
			var err error
			data, err = os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("reading font %s: %w", path, err)
			}
		}
		f, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parsing font %d: %w", i, err)
		}
		fs.fonts[i] = f
	}

	return fs, nil
}

// Face returns a face for the choice at the given pixel size.
func (fs *FontSet) Face(choice FontChoice, size float64) (font.Face, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	key := faceKey{choice, size}
	if face, ok := fs.faces[key]; ok {
		return face, nil
	}

	face, err := opentype.NewFace(fs.fonts[choice], &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("sizing font: %w", err)
	}

	fs.faces[key] = face
	return face, nil
}
