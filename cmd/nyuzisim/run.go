package main

import (
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/raulbehl/nyuzisim/acceptance"
	"github.com/raulbehl/nyuzisim/core/loadmissqueue"
	"github.com/raulbehl/nyuzisim/datarecording"
	"github.com/raulbehl/nyuzisim/mem"
	"github.com/raulbehl/nyuzisim/mem/idealsecondlevel"
	"github.com/raulbehl/nyuzisim/sim"
	"github.com/raulbehl/nyuzisim/sim/directconnection"
)

var runFlags = struct {
	numStrands int
	numMisses  int
	numLines   int
	numWays    int
	l2Latency  int
	seed       int64
	tracePath  string
	noAudit    bool
}{}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a randomized load-miss-queue simulation",
	Run: func(cmd *cobra.Command, args []string) {
		run()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVar(&runFlags.numStrands, "strands", 4,
		"number of hardware strands per core")
	runCmd.Flags().IntVar(&runFlags.numMisses, "misses", 1000,
		"number of load misses to generate")
	runCmd.Flags().IntVar(&runFlags.numLines, "lines", 8,
		"number of distinct cache lines in the traffic pool")
	runCmd.Flags().IntVar(&runFlags.numWays, "ways", 4,
		"way associativity of the first-level cache")
	runCmd.Flags().IntVar(&runFlags.l2Latency, "l2-latency", 20,
		"second-level cache latency in cycles")
	runCmd.Flags().Int64Var(&runFlags.seed, "seed", 1,
		"random seed for the traffic generator")
	runCmd.Flags().StringVar(&runFlags.tracePath, "trace", "",
		"record issues and wakeups into a SQLite database at this path")
	runCmd.Flags().BoolVar(&runFlags.noAudit, "no-audit", false,
		"disable the per-cycle invariant audit")
}

func run() {
	engine := sim.NewSerialEngine()
	freq := 1 * sim.GHz

	pipeline := acceptance.NewPipeline(
		engine, freq, "Pipeline", runFlags.numStrands)
	pipeline.GenerateMisses(
		runFlags.numMisses, runFlags.numLines, runFlags.numWays,
		rand.New(rand.NewSource(runFlags.seed)))

	secondLevel := idealsecondlevel.MakeBuilder().
		WithEngine(engine).
		WithFreq(freq).
		WithLatency(runFlags.l2Latency).
		Build("L2")

	missQueueBuilder := loadmissqueue.MakeBuilder().
		WithEngine(engine).
		WithFreq(freq).
		WithNumStrands(runFlags.numStrands).
		WithCore(mem.CoreID(0)).
		WithUnit(mem.UnitDataCache).
		WithWakeupDst(pipeline.MemPort.AsRemote()).
		WithSecondLevelDst(secondLevel.GetPortByName("Top").AsRemote())
	if !runFlags.noAudit {
		missQueueBuilder = missQueueBuilder.WithInvariantAudit()
	}
	missQueue := missQueueBuilder.Build("Core0MissQueue")

	pipeline.SetMissQueueDst(missQueue.GetPortByName("Top").AsRemote())

	topConn := directconnection.MakeBuilder().
		WithEngine(engine).
		WithFreq(freq).
		Build("TopConn")
	topConn.PlugIn(pipeline.MemPort)
	topConn.PlugIn(missQueue.GetPortByName("Top"))

	bottomConn := directconnection.MakeBuilder().
		WithEngine(engine).
		WithFreq(freq).
		Build("BottomConn")
	bottomConn.PlugIn(missQueue.GetPortByName("Bottom"))
	bottomConn.PlugIn(secondLevel.GetPortByName("Top"))

	if runFlags.tracePath != "" {
		attachRecorder(missQueue, engine)
	}

	pipeline.TickLater()

	err := engine.Run()
	if err != nil {
		panic(err)
	}

	pipeline.MustHaveCompletedAllMisses()

	fmt.Printf("misses completed: %d\n", pipeline.MissesComplete())
	fmt.Printf("wakeup messages:  %d\n", pipeline.WakeupsSeen())
	fmt.Printf("simulated time:   %.9fs\n", float64(engine.CurrentTime()))

	atexit.Exit(0)
}

type issueRecord struct {
	Time    float64
	Entry   int
	Address uint64
	Way     int
	Sync    bool
}

type wakeupRecord struct {
	Time    float64
	Strands string
}

type recorderHook struct {
	recorder datarecording.DataRecorder
	engine   sim.TimeTeller
}

func (h *recorderHook) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case loadmissqueue.HookPosIssue:
		req := ctx.Item.(*mem.LoadReq)
		h.recorder.InsertData("issues", issueRecord{
			Time:    float64(h.engine.CurrentTime()),
			Entry:   req.Strand,
			Address: req.Address,
			Way:     req.Way,
			Sync:    req.Synchronized,
		})
	case loadmissqueue.HookPosWakeup:
		wakeup := ctx.Item.(*mem.WakeupRsp)
		h.recorder.InsertData("wakeups", wakeupRecord{
			Time:    float64(h.engine.CurrentTime()),
			Strands: wakeup.Strands.String(),
		})
	}
}

func attachRecorder(missQueue *loadmissqueue.Comp, engine sim.TimeTeller) {
	recorder := datarecording.New(runFlags.tracePath)
	recorder.CreateTable("issues", issueRecord{})
	recorder.CreateTable("wakeups", wakeupRecord{})

	missQueue.AcceptHook(&recorderHook{recorder: recorder, engine: engine})
}
