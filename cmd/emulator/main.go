package main

import (
	"flag"
	"log"

	"github.com/Krimson/gait-monitory/internal/generators"
	"github.com/Krimson/gait-monitory/internal/pose"
	"github.com/Krimson/gait-monitory/internal/senders"
	"github.com/Krimson/gait-monitory/pkg/models"
)

func main() {
	// Параметры командной строки
	format := flag.String("format", string(pose.FormatCOCO17), "Формат ключевых точек")
	fps := flag.Float64("fps", 30, "Частота кадров")
	frameCount := flag.Int("frames", 300, "Число кадров в последовательности")
	sequences := flag.Int("sequences", 1, "Число последовательностей")
	asymmetry := flag.Float64("asymmetry", 0, "Асимметрия правой ноги [0,1]")
	noise := flag.Float64("noise", 2, "Амплитуда координатного шума, пикселей")
	seed := flag.Int64("seed", 0, "Seed генератора (0 - случайный)")
	serverURL := flag.String("server", "", "Адрес сервера анализа, например http://localhost:8080")
	outputFile := flag.String("output", "data/gait_sequences.jsonl", "Выходной файл при отправке в файл")

	flag.Parse()

	cfg := generators.DefaultGaitConfig(pose.Format(*format))
	cfg.FPS = *fps

	generator := generators.NewGaitGenerator(cfg)
	generator.SetAsymmetry(*asymmetry)
	generator.SetNoise(*noise)
	if *seed != 0 {
		generator.Seed(*seed)
	}

	if err := generator.Validate(); err != nil {
		log.Fatalf("[FATAL] Generator validation failed: %v", err)
	}

	var sender senders.RequestSender
	if *serverURL != "" {
		sender = senders.NewHTTPSender(*serverURL)
	} else {
		fileSender, err := senders.NewFileSender(*outputFile)
		if err != nil {
			log.Fatalf("[FATAL] Failed to create file sender: %v", err)
		}
		sender = fileSender
	}
	defer sender.Close()

	if err := sender.Validate(); err != nil {
		log.Fatalf("[FATAL] Sender validation failed: %v", err)
	}

	for i := 0; i < *sequences; i++ {
		req := &models.AnalyzeRequest{
			KeypointFormat: *format,
			FPS:            *fps,
			Frames:         generator.NextSequence(*frameCount),
		}

		if err := sender.Send(req); err != nil {
			log.Printf("[ERROR] Failed to send sequence %d: %v", i+1, err)
			continue
		}
		log.Printf("[INFO] Sequence %d/%d sent: %d frames, format=%s asymmetry=%.2f",
			i+1, *sequences, *frameCount, *format, *asymmetry)
	}
}
