package main

import (
	"bytes"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/rawbytedev/hexscriptex/pkg/cosave"
	"github.com/rawbytedev/hexscriptex/pkg/forms"
	"github.com/rawbytedev/hexscriptex/pkg/objstore"
	"github.com/rawbytedev/hexscriptex/pkg/optional"
	"github.com/rawbytedev/hexscriptex/pkg/strpool"
)

func main() {
	var (
		addr       string
		memProfile string
		objects    int
		iterations int
		compress   bool
		hold       time.Duration
	)

	pflag.StringVar(&addr, "pprof", "localhost:6060", "Address for the pprof server")
	pflag.StringVar(&memProfile, "memprofile", "mem.prof", "Heap profile output")
	pflag.IntVar(&objects, "objects", 1000, "Stored values per co-save")
	pflag.IntVar(&iterations, "iterations", 10000, "Save and load rounds")
	pflag.BoolVar(&compress, "zstd", false, "Compress co-saves")
	pflag.DurationVar(&hold, "hold", 5*time.Minute, "Time to keep the pprof server up afterwards")
	pflag.Parse()

	go func() {
		log.Println(http.ListenAndServe(addr, nil))
	}()

	f, err := os.Create(memProfile)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	runtime.MemProfileRate = 1

	table := forms.NewTable()
	env := optional.Env{Strings: strpool.New(), Forms: table}
	classes := objstore.NewRegistry()
	classes.RegisterClass(optional.ClassName, func() objstore.Object { return optional.New(env) })

	src := objstore.NewStore(zap.NewNop())
	words := []string{"azerty", "hello", "world", "random"}
	for i := 0; i < objects; i++ {
		o := optional.New(env)
		switch i % 5 {
		case 0:
			o.SetInt(int32(i))
		case 1:
			o.SetFloat(float32(i) / 3)
		case 2:
			o.SetBool(i%2 == 0)
		case 3:
			o.SetString(words[i%len(words)])
		case 4:
			form := &forms.Form{ID: forms.FormID(0x01000000 + i)}
			if err := table.Add(form); err != nil {
				log.Fatal(err)
			}
			o.SetForm(forms.RefTo(form))
		}
		src.Store(o)
	}

	var opts []cosave.WriterOption
	if compress {
		opts = append(opts, cosave.WithCompression(zstd.SpeedDefault))
	}

	dst := objstore.NewStore(zap.NewNop())
	var buf bytes.Buffer
	for i := 0; i < iterations; i++ {
		buf.Reset()
		w := cosave.NewWriter(opts...)
		if err := src.Save(w); err != nil {
			log.Fatal(err)
		}
		if err := w.Finish(&buf); err != nil {
			log.Fatal(err)
		}

		r, err := cosave.NewReader(buf.Bytes(), forms.LoadOrder{})
		if err != nil {
			log.Fatal(err)
		}
		if err := dst.Load(r, classes); err != nil {
			log.Fatal(err)
		}
	}
	log.Printf("%d rounds of %d objects, %d bytes per co-save", iterations, dst.Len(), buf.Len())

	pprof.WriteHeapProfile(f)
	time.Sleep(hold)
}
