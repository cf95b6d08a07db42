package idealsecondlevel

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"

	"github.com/raulbehl/nyuzisim/mem"
	"github.com/raulbehl/nyuzisim/sim"
)

var _ = Describe("Comp", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *MockEngine
		topPort  *MockPort
		comp     *Comp
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())

		engine = NewMockEngine(mockCtrl)

		topPort = NewMockPort(mockCtrl)
		topPort.EXPECT().
			AsRemote().
			Return(sim.RemotePort("L2.Top")).
			AnyTimes()

		comp = MakeBuilder().
			WithEngine(engine).
			WithFreq(1 * sim.GHz).
			WithLatency(20).
			Build("L2")
		comp.topPort = topPort
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	newLoadReq := func(strand int) *mem.LoadReq {
		return mem.LoadReqBuilder{}.
			WithSrc("MissQueue.Bottom").
			WithDst("L2.Top").
			WithAddress(0x1000).
			WithWay(2).
			WithStrand(strand).
			Build()
	}

	It("should make no progress without requests", func() {
		topPort.EXPECT().PeekIncoming().Return(nil)

		Expect(comp.Tick()).To(BeFalse())
	})

	It("should schedule a response after the latency", func() {
		req := newLoadReq(1)

		topPort.EXPECT().PeekIncoming().Return(req)
		topPort.EXPECT().RetrieveIncoming().Return(req)
		engine.EXPECT().CurrentTime().Return(sim.VTimeInSec(10))
		engine.EXPECT().
			Schedule(gomock.Any()).
			Do(func(e sim.Event) {
				evt := e.(*loadRespondEvent)
				Expect(evt.req).To(BeIdenticalTo(req))
				Expect(evt.Time()).To(BeNumerically(
					"~", sim.VTimeInSec(10)+20*sim.VTimeInSec(1e-9), 1e-12))
			})

		Expect(comp.Tick()).To(BeTrue())
	})

	It("should respond with the strand tag of the request", func() {
		req := newLoadReq(3)
		evt := newLoadRespondEvent(sim.VTimeInSec(10), comp, req)

		var rsp *mem.DataReadyRsp
		topPort.EXPECT().CanSend().Return(true)
		topPort.EXPECT().
			Send(gomock.Any()).
			Do(func(msg sim.Msg) {
				rsp = msg.(*mem.DataReadyRsp)
			}).
			Return(nil)

		Expect(comp.Handle(evt)).To(Succeed())

		Expect(rsp.Strand).To(Equal(3))
		Expect(rsp.RespondTo).To(Equal(req.ID))
		Expect(rsp.Dst).To(Equal(sim.RemotePort("MissQueue.Bottom")))
	})

	It("should retry the response when the port is busy", func() {
		req := newLoadReq(0)
		evt := newLoadRespondEvent(sim.VTimeInSec(10), comp, req)

		topPort.EXPECT().CanSend().Return(false)
		engine.EXPECT().
			Schedule(gomock.Any()).
			Do(func(e sim.Event) {
				retry := e.(*loadRespondEvent)
				Expect(retry.req).To(BeIdenticalTo(req))
				Expect(retry.Time()).To(BeNumerically(">", evt.Time()))
			})

		Expect(comp.Handle(evt)).To(Succeed())
	})
})
