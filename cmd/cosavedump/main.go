package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/rawbytedev/hexscriptex/pkg/cosave"
	"github.com/rawbytedev/hexscriptex/pkg/forms"
	"github.com/rawbytedev/hexscriptex/pkg/objstore"
	"github.com/rawbytedev/hexscriptex/pkg/optional"
	"github.com/rawbytedev/hexscriptex/pkg/strpool"
)

func main() {
	var plugins, light []string

	pflag.StringSliceVar(&plugins, "plugins", nil, "Current load order; FormIDs are shown as stored when empty")
	pflag.StringSliceVar(&light, "light", nil, "Current light plugins")
	pflag.Parse()

	current := forms.LoadOrder{Plugins: plugins, Light: light}

	for _, arg := range pflag.Args() {
		data, err := os.ReadFile(arg)
		if err != nil {
			fmt.Println(err.Error())
			continue
		}

		r, err := cosave.NewReader(data, current)
		if err == nil && len(plugins) == 0 && len(light) == 0 {
			// resolve against the saved order so ids are shown as stored
			r, err = cosave.NewReader(data, r.Header().LoadOrder())
		}
		if err != nil {
			fmt.Println(err.Error())
			continue
		}

		fmt.Println(arg + ":")
		PrintHeader(r)
		PrintRecords(r)
	}
}

func PrintHeader(r *cosave.Reader) {
	header := r.Header()

	fmt.Println("Co-save Header:")
	fmt.Println("\tFormat version -", cosave.FormatVersion)
	if r.Compressed() {
		fmt.Println("\tCompression - zstd")
	} else {
		fmt.Println("\tCompression - none")
	}
	fmt.Println("\tSaved at -", time.Unix(header.SavedAt, 0).UTC().Format(time.RFC3339))

	fmt.Println("\tPlugins -", len(header.Plugins))
	for i, name := range header.Plugins {
		fmt.Printf("\t\t[%02X] %s\n", i, name)
	}
	fmt.Println("\tLight plugins -", len(header.LightPlugins))
	for i, name := range header.LightPlugins {
		fmt.Printf("\t\t[FE:%03X] %s\n", i, name)
	}
}

// anyForm treats every FormID as loaded so values show the id they resolve to.
type anyForm struct{}

func (anyForm) LookupFormByID(id forms.FormID) *forms.Form {
	return &forms.Form{ID: id}
}

func PrintRecords(r *cosave.Reader) {
	fmt.Println("Records -", len(r.Records()))

	classes := objstore.NewRegistry()
	env := optional.Env{Strings: strpool.New(), Forms: anyForm{}}
	classes.RegisterClass(optional.ClassName, func() objstore.Object { return optional.New(env) })

	for {
		info, ok := r.NextRecord()
		if !ok {
			break
		}

		fmt.Printf("\t%s v%d - %d bytes\n", info.TypeString(), info.Version, info.Length)
		if info.Type != objstore.RecordType {
			continue
		}

		if err := printObject(r, classes); err != nil {
			fmt.Println("\t\terror -", err)
		}
	}
}

func printObject(r *cosave.Reader, classes *objstore.Registry) error {
	handle, err := r.ReadI32()
	if err != nil {
		return err
	}
	class, err := r.ReadString()
	if err != nil {
		return err
	}
	version, err := r.ReadU32()
	if err != nil {
		return err
	}

	fmt.Printf("\t\tHandle - %d\n", handle)
	fmt.Printf("\t\tClass - %s v%d\n", class, version)

	obj, ok := classes.Create(class)
	if !ok {
		fmt.Println("\t\tData -", r.Remaining(), "bytes")
		return nil
	}
	if err := obj.Load(r, version); err != nil {
		return err
	}
	if s, ok := obj.(fmt.Stringer); ok {
		fmt.Println("\t\tValue -", s.String())
	}
	return nil
}
