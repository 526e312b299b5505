package bytepipe_test

import (
	"fmt"

	"github.com/zhihanii/bytepipe"
)

func Example() {
	p := bytepipe.NewPipe(bytepipe.WithBlockSize(16))
	w, r := p.Writer(), p.Reader()

	go func() {
		w.WriteString("hello, bytepipe")
		w.Flush()
		w.Complete(nil)
	}()

	var msg []byte
	for {
		res, err := r.Read()
		if err != nil {
			panic(err)
		}
		msg = append(msg, res.View.Bytes()...)
		r.AdvanceTo(res.View.End())
		if res.IsCompleted {
			break
		}
	}
	r.Complete(nil)

	fmt.Println(string(msg))
	// Output: hello, bytepipe
}
