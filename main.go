package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/tempograph/microloop/command"
	"github.com/tempograph/microloop/control"
	"github.com/tempograph/microloop/device"
	"github.com/tempograph/microloop/effects"
	"github.com/tempograph/microloop/timing"
)

func main() {
	bpm := flag.Float64("bpm", 120, "starting tempo in beats per minute, used by the internal metronome")
	flag.Parse()

	keeper := timing.New()
	chain := effects.NewChain(keeper)

	quant := control.NewQuantizer(keeper)
	settings := control.NewSettings()
	activity := control.NewActivity()
	chain.Choke.SetFadeSource(settings)

	chokeCtrl := control.NewChokeController(chain.Choke, quant, settings, activity)
	freezeCtrl := control.NewFreezeController(chain.Freeze, quant, settings, activity)
	stutterCtrl := control.NewStutterController(chain.Stutter, quant, settings, activity)

	dispatcher := control.NewDispatcher(activity, stutterCtrl)
	dispatcher.RegisterEffect(command.EffectChoke, chokeCtrl, chain.Choke)
	dispatcher.RegisterEffect(command.EffectFreeze, freezeCtrl, chain.Freeze)
	dispatcher.RegisterEffect(command.EffectStutter, stutterCtrl, nil)

	tracer := control.NewTracer()
	sched := control.NewScheduler(keeper, dispatcher, tracer, settings,
		[]control.Controller{chokeCtrl, freezeCtrl, stutterCtrl})

	visualFeedback := control.NewVisualFeedback(chain.Choke, chain.Freeze, chain.Stutter, activity)
	display := device.NewTermDisplay()
	leds := device.NewTermLEDs()
	visualFeedback.SetDisplay(display)
	visualFeedback.SetKeyLEDs(leds)
	sched.SetVisualFeedback(visualFeedback)
	sched.SetBeatLED(leds)

	encoders := device.NewConsoleEncoders()
	sched.SetEncoderReader(encoders)
	wireEncoders(sched, chokeCtrl, freezeCtrl, stutterCtrl, quant)

	audio, err := device.NewAudioIO(chain, timing.SampleRate, timing.BlockSize)
	if err != nil {
		log.Fatalf("main: opening audio stream: %v", err)
	}
	if err := audio.Start(); err != nil {
		log.Fatalf("main: starting audio stream: %v", err)
	}
	defer audio.Stop()

	clock := device.NewSoftClock(sched, *bpm)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go sched.Run(ctx)
	go clock.Run(ctx)
	go func() {
		ticker := time.NewTicker(33 * time.Millisecond) // ~30fps terminal refresh
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				display.PollAndRender()
			}
		}
	}()

	console, err := device.NewConsole(tracer, sched, settings, chain.Stutter, chain.Freeze)
	if err != nil {
		log.Fatalf("main: opening console: %v", err)
	}
	defer console.Close()

	buttons := device.NewConsoleButtons(sched)
	console.AddHandler(buttons)
	console.AddHandler(encoders)

	if err := console.Run(); err != nil {
		log.Fatalf("main: console: %v", err)
	}
}

// wireEncoders binds the four console encoders to their controller's
// current parameter and mode: FREEZE, STUTTER, and CHOKE parameter
// select plus global quantization. A button press cycles which
// parameter is being edited, and turning the encoder flips that
// parameter's mode between FREE and QUANTIZED (or, for the quantization
// encoder, steps through the grid).
func wireEncoders(sched *control.Scheduler, choke *control.ChokeController, freeze *control.FreezeController, stutter *control.StutterController, quant *control.Quantizer) {
	// Registration order below must match device.EncoderFreeze/Stutter/
	// Choke/Quant (0..3): Scheduler.updateEncoders reads each menu's
	// input by its position in the registered slice, not by any index
	// stored on the menu itself.
	freezeParams := []command.Command{
		{Kind: command.KindSetParam, Target: command.EffectFreeze, Param1: command.ParamLength},
		{Kind: command.KindSetParam, Target: command.EffectFreeze, Param1: command.ParamOnset},
	}
	freezeMenu := control.NewEncoderMenu(device.EncoderFreeze)
	freezeMenu.OnButtonPress(func() {
		next := (freeze.CurrentParameter() + 1) % control.Parameter(len(freezeParams))
		freeze.SetCurrentParameter(next)
	})
	freezeMenu.OnValueChange(func(delta int8) {
		mode := command.ModeFree
		if delta > 0 {
			mode = command.ModeQuantized
		}
		cmd := freezeParams[freeze.CurrentParameter()]
		cmd.Value = uint32(mode)
		sched.PushCommand(cmd)
	})
	sched.RegisterEncoder(freezeMenu)

	stutterParams := []command.Command{
		{Kind: command.KindSetParam, Target: command.EffectStutter, Param1: command.ParamLength},
		{Kind: command.KindSetParam, Target: command.EffectStutter, Param1: command.ParamOnset},
		{Kind: command.KindSetParam, Target: command.EffectStutter, Param1: command.ParamCaptureStart},
		{Kind: command.KindSetParam, Target: command.EffectStutter, Param1: command.ParamCaptureEnd},
	}
	stutterMenu := control.NewEncoderMenu(device.EncoderStutter)
	stutterMenu.OnButtonPress(func() {
		next := (stutter.CurrentParameter() + 1) % control.Parameter(len(stutterParams))
		stutter.SetCurrentParameter(next)
	})
	stutterMenu.OnValueChange(func(delta int8) {
		mode := command.ModeFree
		if delta > 0 {
			mode = command.ModeQuantized
		}
		cmd := stutterParams[stutter.CurrentParameter()]
		cmd.Value = uint32(mode)
		sched.PushCommand(cmd)
	})
	sched.RegisterEncoder(stutterMenu)

	chokeParams := []command.Command{
		{Kind: command.KindSetParam, Target: command.EffectChoke, Param1: command.ParamLength},
		{Kind: command.KindSetParam, Target: command.EffectChoke, Param1: command.ParamOnset},
	}
	chokeMenu := control.NewEncoderMenu(device.EncoderChoke)
	chokeMenu.OnButtonPress(func() {
		next := (choke.CurrentParameter() + 1) % control.Parameter(len(chokeParams))
		choke.SetCurrentParameter(next)
	})
	chokeMenu.OnValueChange(func(delta int8) {
		mode := command.ModeFree
		if delta > 0 {
			mode = command.ModeQuantized
		}
		cmd := chokeParams[choke.CurrentParameter()]
		cmd.Value = uint32(mode)
		sched.PushCommand(cmd)
	})
	sched.RegisterEncoder(chokeMenu)

	grids := []command.Quantization{command.Quant32, command.Quant16, command.Quant8, command.Quant4}
	gridIndex := 1 // Quant16 is the startup default
	quantMenu := control.NewEncoderMenu(device.EncoderQuant)
	quantMenu.OnValueChange(func(delta int8) {
		gridIndex = ((gridIndex+int(delta))%len(grids) + len(grids)) % len(grids)
		quant.SetGrid(grids[gridIndex])
	})
	sched.RegisterEncoder(quantMenu)
}
