package inplace

const placeholderMarkup = `<div class="translate-placeholder animate-pulse w-full p-[4px] py-[10px]">` +
	`<span class="text-[12px] leading-[12px]">Translating..</span>` +
	`</div>`

// RenderPlaceholder returns the markup shown in a result node while its
// translation is in flight.
func RenderPlaceholder() string {
	return placeholderMarkup
}
