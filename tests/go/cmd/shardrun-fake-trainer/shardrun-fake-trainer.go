package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shardrun/shardrun/srcs/go/launch"
	"github.com/shardrun/shardrun/srcs/go/utils"
)

var (
	batchSize = flag.Int("batch-size", 50, "")
	nSteps    = flag.Int("n-steps", 10, "")
	stepTime  = flag.Duration("step-time", 10*time.Millisecond, "")
	crashAt   = flag.Int("crash-at", -1, "exit 1 after this step")
)

func main() {
	flag.Parse()
	w, err := launch.ParseWorkerEnv()
	if err != nil {
		utils.ExitErr(err)
	}
	fmt.Printf("worker %d/%d local %d, master %s:%d over %d nodes\n",
		w.Rank, w.WorldSize, w.LocalRank, w.MasterAddr, w.MasterPort, w.CountNode)
	fakeTrain(w)
}

func fakeTrain(w *launch.Worker) {
	t0 := time.Now()
	for step := 1; step <= *nSteps; step++ {
		time.Sleep(*stepTime)
		if step == *crashAt {
			fmt.Fprintf(os.Stderr, "worker %d crashed at step %d\n", w.Rank, step)
			os.Exit(1)
		}
		fmt.Printf("after %d steps\n", step)
	}
	logEstimatedSpeed(*nSteps, *batchSize, time.Since(t0), w.WorldSize)
}

func logEstimatedSpeed(batches int, batchSize int, d time.Duration, np int) {
	imgPerSec := float64(batches*batchSize) / (float64(d) / float64(time.Second))
	fmt.Fprintf(os.Stderr, "Img/sec %.2f per worker, Img/sec %.2f per cluster, np=%d\n",
		imgPerSec, imgPerSec*float64(np), np)
}
